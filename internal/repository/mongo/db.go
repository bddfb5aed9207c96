package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	// Set context with timeout for the connection attempt
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel() // Ensure cancellation happens even if connection errors out

	// Connect with client options from the URI
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	// Use a separate context for the ping, as the initial connection might have succeeded
	// but the server might be unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second) // Shorter timeout for ping
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		// If ping fails, disconnect the client before returning the error
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	// Connection successful
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection owned by the service.
// Failures are logged and never stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		sessionCollectionName:       EnsureSessionIndexes,
		weeklyPlanCollectionName:    EnsureWeeklyPlanIndexes,
		nutritionPlanCollectionName: EnsureNutritionPlanIndexes,
		formResponseCollectionName:  EnsureFormResponseIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}
