package model

// ModelCollectionBuilderOption is a functional option for configuring a ModelCollection via NewModelCollection.
type ModelCollectionBuilderOption func(*modelCollection)

// WithTickWorkers is an option builder that ticks models in parallel on a worker pool of the given size.
// Values of 1 or less tick serially on the caller's goroutine (the default).
// Models ticked in parallel must not share a Motion instance.
//
// Parameters:
//   - workers: the maximum number of concurrent tick workers
//
// Returns:
//   - ModelCollectionBuilderOption: a function that applies the tick workers option to a collection
func WithTickWorkers(workers int) ModelCollectionBuilderOption {
	return func(c *modelCollection) {
		c.tickWorkers = workers
	}
}

// WithModelOptions is an option builder that applies options to every Model the collection builds.
// They are applied after the collection's own texture and name options.
//
// Parameters:
//   - options: the model options
//
// Returns:
//   - ModelCollectionBuilderOption: a function that applies the model options to a collection
func WithModelOptions(options ...ModelBuilderOption) ModelCollectionBuilderOption {
	return func(c *modelCollection) {
		c.modelOptions = append(c.modelOptions, options...)
	}
}
