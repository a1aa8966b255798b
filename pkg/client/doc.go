// Package client is the public entry point of dockhand.
//
// A Client streams and lists daemon events and performs ordinary requests:
//
//	cfg, err := config.Load("")
//	c, err := client.New(*cfg)
//	defer c.Close()
//
//	stream, err := c.StreamEvents(ctx, session.WithResource("container"))
//	for {
//		ev, err := stream.Next(ctx)
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		...
//	}
//
// Every operation has a Must form that panics instead of returning an error.
package client
