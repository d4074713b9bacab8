// Package vectors defines test vectors, the sinks they are written to and
// the services that produce and check them.
package vectors
