package asm

import "github.com/rs/zerolog"

var nullLogger = zerolog.Nop()
