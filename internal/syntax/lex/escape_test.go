package lex

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/stretchr/testify/assert"
)

func Test_DecodeEscape(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		want    rune
		wantErr bool
	}{
		{name: "newline", text: `\n`, want: '\n'},
		{name: "tab", text: `\t`, want: '\t'},
		{name: "escaped backslash", text: `\\`, want: '\\'},
		{name: "escaped tilde", text: `\~`, want: '~'},
		{name: "hex", text: `\x41`, want: 'A'},
		{name: "hex short", text: `\x4`, wantErr: true},
		{name: "unicode4", text: "\\u0041", want: 'A'},
		{name: "unicode8", text: `\U00000041`, want: 'A'},
		{name: "unicode surrogate", text: `\uD800`, wantErr: true},
		{name: "octal", text: `\101`, want: 'A'},
		{name: "octal out of range", text: `\777`, wantErr: true},
		{name: "unrecognized", text: `\q`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, diag := DecodeEscape(tc.text, wdlerrors.Span{})
			if tc.wantErr {
				assert.NotNil(t, diag)
				return
			}
			assert.Nil(t, diag)
			assert.Equal(t, tc.want, r)
		})
	}
}
