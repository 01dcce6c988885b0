package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"pharmalync/config"
)

// FirebaseClients bundles the Admin SDK clients the service needs. Built
// once at startup and handed to whoever needs them; there is no package
// global to fall back on.
type FirebaseClients struct {
	Firestore *firestore.Client
	Messaging *messaging.Client
	Auth      *auth.Client
}

func FBConnection(ctx context.Context, cfg *config.Config) (*FirebaseClients, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	return &FirebaseClients{
		Firestore: fsClient,
		Messaging: msgClient,
		Auth:      authClient,
	}, nil
}
