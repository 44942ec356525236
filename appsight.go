package appsight

import (
	"github.com/jward/appsight/internal/corpus"
	"github.com/jward/appsight/internal/store"
)

// Re-exported corpus types so callers only import the root package.
type (
	Record            = corpus.Record
	AppSettings       = corpus.AppSettings
	LayoutSet         = corpus.LayoutSet
	Layout            = corpus.Layout
	Component         = corpus.Component
	TextResource      = corpus.TextResource
	RuleConfiguration = corpus.RuleConfiguration
	LoadOptions       = corpus.LoadOptions
)

// Inventory types.
type (
	Inventory  = store.Store
	Deployment = store.Deployment
)

const (
	StatusSuccess = store.StatusSuccess
	StatusFailed  = store.StatusFailed
)

// OpenInventory opens (creating if needed) the deployment inventory at path.
func OpenInventory(path string) (*Inventory, error) {
	inv, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := inv.Migrate(); err != nil {
		inv.Close()
		return nil, err
	}
	return inv, nil
}
