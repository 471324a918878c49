package cmd

import (
	"fmt"
	"os"

	"github.com/easygest/bp/internal/auth"
	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/sync"
	"github.com/easygest/bp/internal/syncclient"
)

// appContext bundles the store, the HTTP client and the sync engine for
// one command invocation.
type appContext struct {
	store  *db.DB
	client *syncclient.Client
	engine *sync.Engine
	auth   *auth.Manager
}

func openApp() (*appContext, error) {
	store, err := db.Open(getBaseDir())
	if err != nil {
		return nil, err
	}

	serverURL := os.Getenv("BP_SERVER_URL")
	if serverURL == "" {
		serverURL, err = store.GetConfig(db.ConfigBaseURL)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	if serverURL == "" {
		store.Close()
		return nil, fmt.Errorf("no server configured: run 'bp init --server <url>' or set BP_SERVER_URL")
	}

	token, err := store.GetConfig(db.ConfigAuthToken)
	if err != nil {
		store.Close()
		return nil, err
	}
	clientID, err := store.ClientID()
	if err != nil {
		store.Close()
		return nil, err
	}

	client := syncclient.New(serverURL, token, clientID)
	app := &appContext{
		store:  store,
		client: client,
		engine: sync.New(store, client),
		auth:   auth.NewManager(store, client, nil),
	}
	return app, nil
}

func (a *appContext) Close() {
	a.store.Close()
}

// requireUser returns the cached session user or fails the command.
func (a *appContext) requireUser() (*models.User, error) {
	user, err := a.store.CurrentUser()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not logged in (run: bp login)")
	}
	return user, nil
}
