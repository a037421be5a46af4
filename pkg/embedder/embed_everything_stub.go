//go:build !embedeverything

package embedder

import "fmt"

func newEmbedEverythingClient(Config) (Client, error) {
	return nil, fmt.Errorf("%w: embedeverything (build with -tags embedeverything)", ErrProviderUnavailable)
}
