package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/pkg/errors"
)

// CollectionStats is a snapshot of a ModelCollection's activity counters.
type CollectionStats struct {
	// Models is the number of models in the collection.
	Models int
	// Ticks is the number of collection ticks since construction.
	Ticks uint64
	// Uploads is the total number of vertex buffer uploads across all models.
	Uploads uint64
}

// ModelCollection holds the animated models of one asset, paired mesh-by-motion.
// Tick and Draw forward to every model in construction order.
// Tick and Draw must not run concurrently with each other.
type ModelCollection interface {
	// Models returns the models in construction order.
	//
	// Returns:
	//   - []Model: the models
	Models() []Model

	// Len returns the number of models.
	//
	// Returns:
	//   - int: the model count
	Len() int

	// Skipped returns the source indices of mesh/motion pairs left out because their motion had at most one bone.
	//
	// Returns:
	//   - []int: the skipped indices in ascending order
	Skipped() []int

	// Tick forwards the tick to every model. With tick workers configured the models are ticked
	// in parallel and Tick returns once all of them are done.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the previous tick, in seconds
	Tick(deltaTime float32)

	// Draw draws every model with the given effect.
	//
	// Parameters:
	//   - effect: the effect applied to each model
	Draw(effect renderer.Effect)

	// Stats returns the collection's activity counters.
	//
	// Returns:
	//   - CollectionStats: the current counters
	Stats() CollectionStats

	// Release frees every model's GPU buffers.
	Release()
}

// modelCollection is the implementation of the ModelCollection interface.
type modelCollection struct {
	models  []Model
	skipped []int

	modelOptions []ModelBuilderOption

	tickWorkers int
	tickPool    worker.DynamicWorkerPool
	ticks       uint64
}

var _ ModelCollection = &modelCollection{}

// NewModelCollection pairs meshes[i] with clips[i] and builds a Model for every pair whose clip has more than one bone.
// Pairs with a clip of zero or one bone are static props and are skipped without error.
//
// Parameters:
//   - device: the device owning every model's buffers
//   - meshes: the mesh list
//   - clips: the motion list, parallel to meshes
//   - texture: the texture reference shared by every model (may be nil)
//   - options: functional options (tick workers, per-model options)
//
// Returns:
//   - ModelCollection: the collection
//   - error: ErrCountMismatch (wrapped) if the lists differ in length, or the first model construction error
func NewModelCollection(device renderer.Device, meshes []Mesh, clips []animator.Clip, texture renderer.Texture, options ...ModelCollectionBuilderOption) (ModelCollection, error) {
	if len(meshes) != len(clips) {
		return nil, errors.Wrapf(ErrCountMismatch, "%d meshes, %d motions", len(meshes), len(clips))
	}

	c := &modelCollection{}
	for _, opt := range options {
		opt(c)
	}

	for i := range meshes {
		if clips[i].BoneCount <= 1 {
			c.skipped = append(c.skipped, i)
			continue
		}

		opts := make([]ModelBuilderOption, 0, len(c.modelOptions)+2)
		opts = append(opts, WithTexture(texture))
		if meshes[i].Name == "" {
			opts = append(opts, WithName(fmt.Sprintf("mesh %d", i)))
		}
		opts = append(opts, c.modelOptions...)

		m, err := NewModel(device, meshes[i], clips[i], opts...)
		if err != nil {
			c.Release()
			return nil, errors.WithMessagef(err, "mesh %d", i)
		}
		c.models = append(c.models, m)
	}

	if c.tickWorkers > 1 && len(c.models) > 1 {
		c.tickPool = worker.NewDynamicWorkerPool(c.tickWorkers, len(c.models), 1*time.Second)
	}
	return c, nil
}

func (c *modelCollection) Models() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

func (c *modelCollection) Len() int {
	return len(c.models)
}

func (c *modelCollection) Skipped() []int {
	out := make([]int, len(c.skipped))
	copy(out, c.skipped)
	return out
}

func (c *modelCollection) Tick(deltaTime float32) {
	c.ticks++
	if c.tickPool == nil {
		for _, m := range c.models {
			m.Tick(deltaTime)
		}
		return
	}

	// Each model owns its vertices and motion cursor, so ticks are independent.
	var wg sync.WaitGroup
	for i, m := range c.models {
		wg.Add(1)
		mCap := m
		c.tickPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				mCap.Tick(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (c *modelCollection) Draw(effect renderer.Effect) {
	for _, m := range c.models {
		m.Draw(effect)
	}
}

func (c *modelCollection) Stats() CollectionStats {
	stats := CollectionStats{Models: len(c.models), Ticks: c.ticks}
	for _, m := range c.models {
		stats.Uploads += uint64(m.Uploads())
	}
	return stats
}

func (c *modelCollection) Release() {
	for _, m := range c.models {
		m.Release()
	}
}
