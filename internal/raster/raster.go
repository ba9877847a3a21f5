// Package raster implements the terminal spike raster: a fixed-width
// circular column buffer recording, per tick, which neuron ids fired, and
// an ASCII renderer for it. Grounded on
// original_source/snn-tui/src/{app.rs,ui.rs}: app.rs's App.raster is a
// [neuron][col] grid written one column per tick with wraparound via
// `col := tick % width`; ui.rs renders it as "nXX |...." rows with a
// status line underneath. internal/raster is presentation code with no
// natural third-party consumer among the pack's libraries, so it stays on
// the standard library except for TTY detection (see DESIGN.md).
package raster

import (
	"strconv"
	"strings"
)

// firedMark is the glyph written into a column for a neuron that fired on
// that tick: an ASCII stand-in for ui.rs's '•'.
const firedMark = '*'

// emptyMark fills columns with no recorded spike, matching ui.rs's ' '.
const emptyMark = ' '

// Buffer is a fixed-width circular column buffer: rows are neuron ids,
// columns are ticks modulo the buffer's width. It never grows past its
// configured width regardless of how many ticks are recorded.
type Buffer struct {
	width int
	grid  [][]rune // grid[neuronID][col]
	ticks []uint64 // tick number currently occupying each column, or ^uint64(0) if unwritten
	last  uint64   // most recently recorded tick
	wrote bool     // whether RecordTick has ever been called
}

// New constructs a Buffer sized for neuronCount rows and width columns.
// width must be at least 1.
func New(neuronCount uint, width int) *Buffer {
	if width < 1 {
		width = 1
	}
	grid := make([][]rune, neuronCount)
	for i := range grid {
		row := make([]rune, width)
		for c := range row {
			row[c] = emptyMark
		}
		grid[i] = row
	}
	ticks := make([]uint64, width)
	for i := range ticks {
		ticks[i] = ^uint64(0) // sentinel: column never written
	}
	return &Buffer{width: width, grid: grid, ticks: ticks}
}

// Width reports the buffer's fixed column capacity.
func (b *Buffer) Width() int {
	return b.width
}

// NeuronCount reports how many rows the buffer tracks.
func (b *Buffer) NeuronCount() int {
	return len(b.grid)
}

// RecordTick clears the column for tick (mod width) and marks every
// neuron id in fired as having spiked there, the way app.rs's step()
// clears then re-marks one column per call.
func (b *Buffer) RecordTick(tick uint64, fired []int) {
	col := int(tick % uint64(b.width))
	for row := range b.grid {
		b.grid[row][col] = emptyMark
	}
	for _, neuronID := range fired {
		if neuronID >= 0 && neuronID < len(b.grid) {
			b.grid[neuronID][col] = firedMark
		}
	}
	b.ticks[col] = tick
	b.last = tick
	b.wrote = true
}

// columnOrder returns the columns to render in chronological order: the
// oldest retained column first, the most recently written column last.
// Columns never written are skipped.
func (b *Buffer) columnOrder() []int {
	order := make([]int, 0, b.width)
	if !b.wrote {
		return order
	}
	start := int((b.last + 1) % uint64(b.width))
	for i := 0; i < b.width; i++ {
		col := (start + i) % b.width
		if b.ticks[col] != ^uint64(0) {
			order = append(order, col)
		}
	}
	return order
}

// Render produces the ASCII raster: one row per neuron, columns ordered
// oldest-to-newest left to right, labeled "nNN |" the way ui.rs labels
// each row before its spike-dot content.
func (b *Buffer) Render() string {
	order := b.columnOrder()
	var sb strings.Builder
	for neuronID, row := range b.grid {
		sb.WriteString(neuronLabel(neuronID))
		sb.WriteString(" |")
		for _, col := range order {
			sb.WriteRune(row[col])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderLine produces a single-line, non-terminal-friendly summary of the
// most recently recorded tick: the tick number and the sorted ids that
// fired. Used when stdout is not a TTY, in place of the multi-row raster.
func (b *Buffer) RenderLine() string {
	if !b.wrote {
		return "(no ticks recorded)"
	}
	col := int(b.last % uint64(b.width))
	var fired []int
	for neuronID, row := range b.grid {
		if row[col] == firedMark {
			fired = append(fired, neuronID)
		}
	}
	var sb strings.Builder
	sb.WriteString("tick ")
	sb.WriteString(strconv.FormatUint(b.last, 10))
	sb.WriteString(": fired=")
	if len(fired) == 0 {
		sb.WriteString("[]")
	} else {
		sb.WriteByte('[')
		for i, id := range fired {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(id))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func neuronLabel(id int) string {
	if id < 10 {
		return "n0" + strconv.Itoa(id)
	}
	return "n" + strconv.Itoa(id)
}
