// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package channel

import "fmt"

// Direction tells whether a channel is read from or written to.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "in"
	case Output:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Channel identifies one physical input or output line.
// Channels are bound once at startup and never change.
type Channel struct {
	Index int       `json:"index"`
	Dir   Direction `json:"dir"`
	Name  string    `json:"name"`
}

// In returns an input channel.
func In(index int, name string) Channel {
	return Channel{Index: index, Dir: Input, Name: name}
}

// Out returns an output channel.
func Out(index int, name string) Channel {
	return Channel{Index: index, Dir: Output, Name: name}
}

func (c Channel) String() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s%d", c.Dir, c.Index)
}
