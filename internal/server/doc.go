// Package server implements an MCP (Model Context Protocol) server exposing the
// recolor operations as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image inspection:
//   - image_load: Dimensions, format and alpha presence
//   - image_sample_pixel: Stored color, alpha class and match color of a pixel
//   - image_sample_pixels: The same for several labeled pixels
//
// Recoloring:
//   - palette_blend: Blended target color and weights for one source color
//   - recolor_image: Recolor one image to an output path
//   - recolor_preview: Recolor in memory and return a base64 PNG
//   - recolor_batch: Run a batch of jobs sharing one palette pair
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server. Writing
// through recolor_image evicts the output path so later reads see the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string in data.
//
// # Usage
//
//	srv := server.New(server.Config{Workers: 4, Logger: logger})
//	if err := srv.Run(os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
