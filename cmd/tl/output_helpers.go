package main

import (
	"io"

	"github.com/bytedance/sonic"
)

func encodeJSON(w io.Writer, value any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
