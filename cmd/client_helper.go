package cmd

import (
	"context"
	"fmt"

	"harness/internal/cli"
	"harness/internal/client"
)

// clientHandle is *client.Client, aliased so command files read naturally
// without importing both internal/client and internal/cli under the same
// short name.
type clientHandle = client.Client

// newClientHandle dials the daemon described by flags, turning a raw dial
// failure into a message naming what kind of connection problem it was
// (TLS, DNS, timeout, network) rather than a bare "connection refused".
func newClientHandle(ctx context.Context, flags *cli.CommandFlags) (*clientHandle, error) {
	c, err := client.Dial(ctx, flags.ClientConfig())
	if err != nil {
		endpoint := fmt.Sprintf("%s:%d", flags.Host, flags.Port)
		if classified := cli.ClassifyConnectionError(err, endpoint); classified != nil {
			return nil, fmt.Errorf("%s: %s (%w)", classified.Type, endpoint, classified.Reason)
		}
		return nil, err
	}
	return c, nil
}
