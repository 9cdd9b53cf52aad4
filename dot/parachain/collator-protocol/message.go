// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collatorprotocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	parachaintypes "github.com/ChainSafe/collator/dot/parachain/types"
	"github.com/ChainSafe/collator/pkg/scale"
)

// MaxCollationMessageSize is the maximum size of a collation message.
const MaxCollationMessageSize = 16 * 1024 * 1024

const maxResponseSize = 4 * 1024

var (
	ErrMessageTooLarge = errors.New("message too large")
	ErrEmptyMessage    = errors.New("empty message")
)

// SubmitCollation is sent by a collator to hand a collation to a validator.
type SubmitCollation struct {
	ParaID    parachaintypes.ParaID
	Collation parachaintypes.Collation
}

// SubmissionResponse is the validator answer to a SubmitCollation.
type SubmissionResponse struct {
	Accepted bool
	// Reason is set when the collation is rejected.
	Reason string
}

func uint64ToLEB128(in uint64) []byte {
	out := []byte{}
	for {
		b := uint8(in & 0x7f)
		in >>= 7
		if in != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if in == 0 {
			break
		}
	}
	return out
}

func readLEB128ToUint64(r *bufio.Reader) (uint64, error) {
	var out uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		out |= uint64(0x7F&b) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("%w: length prefix overflows", ErrMessageTooLarge)
		}
	}
	return out, nil
}

// writeMessage SCALE encodes msg and writes it prefixed with its LEB128 length.
func writeMessage(w io.Writer, msg interface{}, maxSize uint64) error {
	encoded, err := scale.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %T: %w", msg, err)
	}
	if uint64(len(encoded)) > maxSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrMessageTooLarge, len(encoded), maxSize)
	}

	_, err = w.Write(append(uint64ToLEB128(uint64(len(encoded))), encoded...))
	return err
}

// readMessage reads a length prefixed message into msg.
func readMessage(r *bufio.Reader, msg interface{}, maxSize uint64) error {
	length, err := readLEB128ToUint64(r)
	if err != nil {
		return err
	}

	if length == 0 {
		return ErrEmptyMessage
	}
	if length > maxSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrMessageTooLarge, length, maxSize)
	}

	buf := make([]byte, length)
	if _, err = io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading message: %w", err)
	}

	if err = scale.Unmarshal(buf, msg); err != nil {
		return fmt.Errorf("decoding %T: %w", msg, err)
	}
	return nil
}
