package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/sma-siswa-web/internal/models"
)

var uniqueIndexes = map[models.SiswaField]string{
	models.FieldNama: "nama_unique",
	models.FieldNISN: "nisn_unique",
	models.FieldNIK:  "nik_unique",
}

// SiswaMongoRepository stores student documents in a MongoDB collection.
type SiswaMongoRepository struct {
	coll *mongo.Collection
}

// NewSiswaMongoRepository constructs a SiswaMongoRepository.
func NewSiswaMongoRepository(coll *mongo.Collection) *SiswaMongoRepository {
	return &SiswaMongoRepository{coll: coll}
}

// EnsureIndexes creates the unique indexes backing nama, nisn and nik.
func (r *SiswaMongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := make([]mongo.IndexModel, 0, len(uniqueIndexes))
	for field, name := range uniqueIndexes {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: string(field), Value: 1}},
			Options: options.Index().SetUnique(true).SetName(name),
		})
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create siswa indexes: %w", err)
	}
	return nil
}

// FindAll returns every student in insertion order.
func (r *SiswaMongoRepository) FindAll(ctx context.Context) ([]models.Siswa, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list siswa: %w", err)
	}
	defer cur.Close(ctx)

	siswa := []models.Siswa{}
	if err := cur.All(ctx, &siswa); err != nil {
		return nil, fmt.Errorf("decode siswa: %w", err)
	}
	return siswa, nil
}

// FindOne returns the first student whose field equals value.
func (r *SiswaMongoRepository) FindOne(ctx context.Context, field models.SiswaField, value string) (*models.Siswa, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("find siswa: unsupported field %q", field)
	}
	var s models.Siswa
	if err := r.coll.FindOne(ctx, bson.M{string(field): value}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrSiswaNotFound
		}
		return nil, fmt.Errorf("find siswa by %s: %w", field, err)
	}
	return &s, nil
}

// Insert stores a new student document and records its generated id.
func (r *SiswaMongoRepository) Insert(ctx context.Context, s *models.Siswa) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		if field, ok := duplicateField(err); ok {
			return fmt.Errorf("insert siswa: %w", &models.DuplicateFieldError{Field: field, Err: err})
		}
		return fmt.Errorf("insert siswa: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

// UpdateByNISN sets the mutable fields of the document matched by nisn.
func (r *SiswaMongoRepository) UpdateByNISN(ctx context.Context, nisn string, upd models.SiswaUpdate) error {
	set := bson.M{
		"tingkat":    upd.Tingkat,
		"rombel":     upd.Rombel,
		"tgl_masuk":  upd.TglMasuk,
		"terdaftar":  upd.Terdaftar,
		"updated_at": time.Now().UTC(),
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"nisn": nisn}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update siswa: %w", err)
	}
	return nil
}

// DeleteByNISN removes the document matched by nisn, if any.
func (r *SiswaMongoRepository) DeleteByNISN(ctx context.Context, nisn string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"nisn": nisn}); err != nil {
		return fmt.Errorf("delete siswa: %w", err)
	}
	return nil
}

// duplicateField maps an E11000 write error back to the field whose unique
// index rejected it.
func duplicateField(err error) (models.SiswaField, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	msg := err.Error()
	for field, index := range uniqueIndexes {
		if strings.Contains(msg, index) {
			return field, true
		}
	}
	return "", false
}
