package destination

import (
	"context"
	"fmt"
	"sort"

	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
)

type NewFunc func() Writer

var RegisteredWriters = map[types.DestinationType]NewFunc{}

// NewWriter builds the writer registered for config.Type and loads its config.
func NewWriter(ctx context.Context, config *types.WriterConfig) (Writer, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	writer := newfunc()
	writerConfig := writer.GetConfigRef()
	if config.WriterConfig != nil {
		if err := utils.Unmarshal(config.WriterConfig, writerConfig); err != nil {
			return nil, err
		}
	}

	if err := writer.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}
	return writer, nil
}

// Types lists the registered destination types.
func Types() []types.DestinationType {
	registered := make([]types.DestinationType, 0, len(RegisteredWriters))
	for t := range RegisteredWriters {
		registered = append(registered, t)
	}
	sort.Slice(registered, func(i, j int) bool { return registered[i] < registered[j] })
	return registered
}
