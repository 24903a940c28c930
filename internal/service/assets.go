package service

import (
	_ "embed"
)

//go:embed veldt.proto
var veldtProto string
