// Package runtime provides the Spawner capability: the minimal
// fire-and-forget Go/Sleep surface that the daemon server uses for its
// detached work instead of calling "go func(){}()" directly, so an embedding
// application can choose how detached work is scheduled and cancelled.
package runtime
