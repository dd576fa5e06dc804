package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	mongostore "staydesk/internal/storage/mongo"
	"staydesk/pkg/logger"
)

func emptyListing(mt *mtest.T) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+".$cmd.listCollections", mtest.FirstBatch)
}

func TestRunMigration(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fresh database", func(mt *mtest.T) {
		for _, def := range Collections() {
			mt.AddMockResponses(emptyListing(mt), mtest.CreateSuccessResponse())
			if len(def.Indexes) > 0 {
				mt.AddMockResponses(mtest.CreateSuccessResponse())
			}
		}

		require.NoError(t, RunMigration(context.Background(), mt.DB, logger.Nop()))
	})

	mt.Run("existing collections are modified", func(mt *mtest.T) {
		for _, def := range Collections() {
			mt.AddMockResponses(
				mtest.CreateCursorResponse(0, mt.DB.Name()+".$cmd.listCollections", mtest.FirstBatch,
					bson.D{{Key: "name", Value: def.Name}, {Key: "type", Value: "collection"}}),
				mtest.CreateSuccessResponse(),
			)
			if len(def.Indexes) > 0 {
				mt.AddMockResponses(mtest.CreateSuccessResponse())
			}
		}

		require.NoError(t, RunMigration(context.Background(), mt.DB, logger.Nop()))
	})

	mt.Run("index failure is reported", func(mt *mtest.T) {
		mt.AddMockResponses(
			emptyListing(mt),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 85, Name: "IndexOptionsConflict", Message: "conflict"}),
		)

		err := RunMigration(context.Background(), mt.DB, logger.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), mongostore.RoomsCollection)
	})
}

func TestCollections_MatchStore(t *testing.T) {
	names := make([]string, 0, 3)
	for _, def := range Collections() {
		names = append(names, def.Name)
		assert.NotNil(t, def.Validator, def.Name)
	}
	assert.Equal(t, []string{mongostore.RoomsCollection, mongostore.BookingsCollection, mongostore.CountersCollection}, names)
}
