package model

// Entity is anything persisted under a string primary key.
type Entity interface {
	EntityID() string
}
