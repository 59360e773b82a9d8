package ecs

// EntityCreated is published synchronously when an entity handle is allocated.
type EntityCreated struct {
	Entity Handle
}

// EntityDestroyed is published synchronously when an entity is marked for
// destruction. Its components stay readable until the end-of-tick sweep.
type EntityDestroyed struct {
	Entity Handle
}
