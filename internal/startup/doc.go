// Package startup handles configuration loading and structured startup
// and shutdown logging.
//
// Configuration comes from environment variables, optionally seeded from
// a .env file. Every setting is logged at load time so a container's
// first lines of output describe exactly how it will run.
package startup
