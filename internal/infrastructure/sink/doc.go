// Package sink writes vectors as console text or JSON Lines and reads JSON
// Lines back.
package sink
