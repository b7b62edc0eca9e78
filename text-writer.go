package stxtconverter

import (
	"bytes"
	"io"
	"unicode/utf8"
)

/**
 * write text to the target, prefixed by the first line indent when a new line starts
 * with a nil target nothing is written, only the length is returned
 */
func writeText(context *conversionContext, text []byte, target io.Writer) (int, error) {
	prefix := 0
	if context.atLineStart {
		prefix = context.firstLineIndent
		context.atLineStart = false
	}

	if target == nil {
		return prefix + len(text), nil
	}

	if prefix > 0 {
		if err := writeFull(target, bytes.Repeat([]byte{' '}, prefix)); err != nil {
			return 0, err
		}
	}
	if err := writeFull(target, text); err != nil {
		return 0, err
	}

	return prefix + len(text), nil
}

func writeString(context *conversionContext, text string, target io.Writer) (int, error) {
	return writeText(context, []byte(text), target)
}

/**
 * end the current line; the indent is only written when text follows
 */
func nextLine(context *conversionContext, prefix string, target io.Writer) (int, error) {
	context.atLineStart = true

	if target != nil {
		if err := writeFull(target, []byte(prefix)); err != nil {
			return 0, err
		}
	}

	return len(prefix), nil
}

/**
 * write the UTF-8 encoding of a code point; values that are not unicode scalars become U+FFFD
 */
func writeUnicodeChar(context *conversionContext, c rune, target io.Writer) (int, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	return writeText(context, buf[:n], target)
}

func writeFull(target io.Writer, p []byte) error {
	written, err := target.Write(p)
	if err != nil {
		return err
	}
	if written != len(p) {
		return io.ErrShortWrite
	}
	return nil
}
