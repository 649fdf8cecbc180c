package symbols

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const listing = `
00000200 T _main
00ff0000 B _game_score
00ff0004 B player.x
00ff0002 D _lives
00ff0010 B __bss_start
00ff0010 B _end
00ff0012 B 1up_timer
not a symbol line
00ff0014 B game_score
01000000 B outside
`

func TestParse(t *testing.T) {
	symbols, err := Parse(strings.NewReader(listing))
	assert.NoError(t, err)
	assert.Len(t, symbols, 9)
	assert.Equal(t, Symbol{Address: 0x200, Type: 'T', Name: "_main"}, symbols[0])
	assert.Equal(t, Symbol{Address: 0xFF0004, Type: 'B', Name: "player.x"}, symbols[2])
}

func TestFilterRange(t *testing.T) {
	symbols, err := Parse(strings.NewReader(listing))
	assert.NoError(t, err)

	ram := FilterRange(symbols, DefaultRAMStart, DefaultRAMEnd)
	assert.Len(t, ram, 7)
	for _, sym := range ram {
		assert.True(t, sym.Address >= DefaultRAMStart && sym.Address <= DefaultRAMEnd)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"score", "score"},
		{"_score", "score"},
		{"__score", "_score"},
		{"player.x", "player_x"},
		{"1up", "_1up"},
		{"_1up", "_1up"},
		{"a$b-c", "a_b_c"},
		{"_", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.name))
		})
	}
}

func TestIsLinkerSymbol(t *testing.T) {
	assert.True(t, IsLinkerSymbol("_end"))
	assert.True(t, IsLinkerSymbol("__bss_start"))
	assert.True(t, IsLinkerSymbol("__anything"))
	assert.False(t, IsLinkerSymbol("_main"))
	assert.False(t, IsLinkerSymbol("end"))
}

func TestManager(t *testing.T) {
	symbols, err := Parse(strings.NewReader(listing))
	assert.NoError(t, err)

	m := NewManager(log.NewTestLogger(t))
	m.AddAll(FilterRange(symbols, DefaultRAMStart, DefaultRAMEnd))

	entries := m.Entries()
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []Entry{
		{Name: "game_score", Original: "_game_score", Address: 0xFF0000},
		{Name: "lives", Original: "_lives", Address: 0xFF0002},
		{Name: "player_x", Original: "player.x", Address: 0xFF0004},
		{Name: "_1up_timer", Original: "1up_timer", Address: 0xFF0012},
	}, entries)

	// the duplicate at the higher address is skipped
	assert.True(t, m.Has("game_score"))
	assert.False(t, m.Add(Symbol{Address: 0xFF0020, Name: "game_score"}))
	assert.False(t, m.Add(Symbol{Address: 0xFF0020, Name: "_"}))
	assert.True(t, m.Add(Symbol{Address: 0xFF0020, Name: "timer"}))
	assert.Equal(t, 5, m.Len())
}

func TestWriteHeader(t *testing.T) {
	entries := []Entry{
		{Name: "game_score", Original: "_game_score", Address: 0xFF0000},
		{Name: "lives", Original: "lives", Address: 0xFF0002},
	}
	opts := Options{
		Namespace: "Game",
		Source:    "rom.sym",
		Now: func() time.Time {
			return time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteHeader(&buf, entries, opts))

	expected := strings.Join([]string{
		"#pragma once",
		"",
		"// Auto-generated symbol table from Genesis ELF",
		"// Generated: 2026-01-02T03:04:05.000006",
		"// Source: rom.sym",
		"",
		"#include <cstdint>",
		"",
		"namespace Game {",
		"",
		"    constexpr uint32_t game_score = 0xFF0000;  // original: _game_score",
		"    constexpr uint32_t lives = 0xFF0002;",
		"",
		"}  // namespace Game",
		"",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestWriteHeaderDefaults(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteHeader(&buf, nil, Options{}))
	assert.Contains(t, buf.String(), "namespace Sym {")
	assert.False(t, strings.Contains(buf.String(), "// Source:"))
}
