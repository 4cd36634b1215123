package redisx

import "time"

const (
	// Cache produk: catalog:product:{id} -> JSON Product
	KeyProduct = "catalog:product:%s"

	// Cache list produk (satu key, di-invalidate setiap ada perubahan)
	KeyProductList = "catalog:products"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLProduct     = 5 * time.Minute
	TTLProductList = time.Minute
	TTLDedup       = 48 * time.Hour
)
