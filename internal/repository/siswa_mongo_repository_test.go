package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/sma-siswa-web/internal/models"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestSiswaMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find all", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		first := mtest.CreateCursorResponse(1, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "nama", Value: "Budi"}, {Key: "nisn", Value: "111"}, {Key: "nik", Value: "999"}},
		)
		second := mtest.CreateCursorResponse(0, namespace(mt), mtest.NextBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "nama", Value: "Ani"}, {Key: "nisn", Value: "222"}, {Key: "nik", Value: "888"}},
		)
		mt.AddMockResponses(first, second)

		siswa, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, siswa, 2)
		assert.Equal(mt, "Budi", siswa[0].Nama)
		assert.Len(mt, siswa[0].ID, 24)
		assert.Equal(mt, "222", siswa[1].NISN)
	})

	mt.Run("find one", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "nama", Value: "Budi"}, {Key: "nisn", Value: "111"}},
		))

		s, err := repo.FindOne(context.Background(), models.FieldNISN, "111")
		require.NoError(mt, err)
		assert.Equal(mt, "Budi", s.Nama)
	})

	mt.Run("find one missing", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindOne(context.Background(), models.FieldNama, "nobody")
		assert.ErrorIs(mt, err, models.ErrSiswaNotFound)
	})

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := &models.Siswa{Nama: "Budi", NISN: "111", NIK: "999"}
		require.NoError(mt, repo.Insert(context.Background(), s))
		assert.Len(mt, s.ID, 24)
		assert.False(mt, s.CreatedAt.IsZero())
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: wpu.siswas index: nisn_unique dup key: { nisn: "111" }`,
		}))

		err := repo.Insert(context.Background(), &models.Siswa{Nama: "Budi", NISN: "111", NIK: "999"})
		var dup *models.DuplicateFieldError
		require.True(mt, errors.As(err, &dup))
		assert.Equal(mt, models.FieldNISN, dup.Field)
	})

	mt.Run("update and delete", func(mt *mtest.T) {
		repo := NewSiswaMongoRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(mt, repo.UpdateByNISN(context.Background(), "111", models.SiswaUpdate{Tingkat: "11"}))
		require.NoError(mt, repo.DeleteByNISN(context.Background(), "404"))
	})
}
