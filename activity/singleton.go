package activity

import (
	"sync"

	"github.com/c360studio/semactivity/schema"
)

// Default schema instance and initialization guard.
var (
	defaultSchema *schema.Schema
	defaultOnce   sync.Once
)

// Schema returns the minimal built-in schema covering object, activity and
// collection. It is built on first call and shared afterwards.
func Schema() *schema.Schema {
	defaultOnce.Do(func() {
		s, err := schema.NewBuilder().Add(Models()...).Build()
		if err != nil {
			panic("failed to build activity schema: " + err.Error())
		}
		defaultSchema = s
	})
	return defaultSchema
}
