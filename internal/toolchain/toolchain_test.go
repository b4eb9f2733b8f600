package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	fail  string
}

func (r *recorder) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	if name == r.fail {
		return []byte("out.asm:3: error: undefined symbol\n"), errors.New("exit status 1")
	}
	return nil, nil
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		expects []string
	}{
		{
			name: "defaults",
			expects: []string{
				"yasm -f elf32 -o out.o out.asm",
				"ld -m elf_i386 -o out out.o libz.o",
			},
		},
		{
			name: "debug",
			opts: []Option{WithDebug(true)},
			expects: []string{
				"yasm -f elf32 -g dwarf2 -o out.o out.asm",
				"ld -m elf_i386 -o out out.o libz.o",
			},
		},
		{
			name: "no runtime",
			opts: []Option{WithRuntime(""), WithAssembler("nasm"), WithLinker("i686-ld")},
			expects: []string{
				"nasm -f elf32 -o out.o out.asm",
				"i686-ld -m elf_i386 -o out out.o",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			tc := New(append(tt.opts, WithRunner(r.run))...)
			require.NoError(t, tc.Build(context.Background(), "out.asm", "out"))
			require.Equal(t, tt.expects, r.calls)
		})
	}
}

func TestBuildFailure(t *testing.T) {
	r := &recorder{fail: "yasm"}
	err := New(WithRunner(r.run)).Build(context.Background(), "out.asm", "out")
	require.Error(t, err)
	require.Contains(t, err.Error(), "yasm failed")
	require.Contains(t, err.Error(), "undefined symbol")
	require.Len(t, r.calls, 1)
}
