// Package storage provides object storage backends and the Assets helper
// used to persist uploaded product images.
//
// Backends register themselves with RegisterFactory from an init function,
// so a binary picks the ones it links:
//
//	import (
//	    _ "github.com/kbukum/storefront/storage/local"
//	    _ "github.com/kbukum/storefront/storage/s3"
//	)
//
//	store, err := storage.New(cfg, log)
//	assets := storage.NewAssets(store, storage.AssetsConfig{Prefix: "products"})
package storage
