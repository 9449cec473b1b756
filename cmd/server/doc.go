// Command server runs the Glitchly app host.
//
// Configuration comes from the environment (see internal/infrastructure/config);
// the -port, -host, -public, -storage and -dev flags override it.
package main
