package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/database"
)

func newMongoStore(t *testing.T) *Mongo {
	t.Helper()
	requireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client, err := database.NewMongoClient(ctx, config.Load().MongoURI)
	require.NoError(t, err)

	name := "study_agent_test_" + uuid.NewString()[:8]
	s, err := NewMongo(ctx, client, name)
	if err != nil {
		_ = client.Disconnect(ctx)
	}
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := s.db.Drop(context.Background()); err != nil {
			t.Logf("drop %s: %v", name, err)
		}
		_ = s.Close()
	})
	return s
}

func TestMongoContract(t *testing.T) {
	runStoreContract(t, newMongoStore(t), newFixture())
}
