package cache

import "fmt"

type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityProduct   EntityType = "product"
	EntityDashboard EntityType = "dashboard"
)

type KeyType string

const (
	KeyID           KeyType = "id"
	KeyTokenVersion KeyType = "token_version"
	KeyStats        KeyType = "stats"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}
