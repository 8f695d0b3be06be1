// Package relay encodes and decodes the payloads exchanged with relay
// accounts.
//
// Relay accounts store files for peers that are not online at the same time
// and fan group files out to members. The engine talks to them over the
// ordinary message channel with three payload shapes: a pull request asking
// the relay to push a stored file, the relay acknowledgment that accompanies
// the pushed file offer, and the send announcement attached to a relayed
// upload. All three use the protobuf wire format so they stay compatible with
// relay servers written against the shared .proto definitions.
package relay

import (
	"errors"
	"fmt"

	"github.com/opd-ai/toxfer/limits"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedPayload indicates a payload that is not valid wire format or
// lacks a required field.
var ErrMalformedPayload = errors.New("malformed relay payload")

// Field numbers of the FilePullReq message.
const (
	pullFieldMessageID protowire.Number = 1
	pullFieldGroupID   protowire.Number = 2
	pullFieldPublicKey protowire.Number = 3
)

// Field numbers of the FileTransfer message.
const (
	transferFieldMessageID protowire.Number = 1
	transferFieldRealName  protowire.Number = 2
	transferFieldGroupID   protowire.Number = 3
	transferFieldToPK      protowire.Number = 4
	transferFieldCode      protowire.Number = 5
)

// AckCode is the status a relay reports for a pulled file.
type AckCode uint32

const (
	// AckOK means the relay is pushing the file.
	AckOK AckCode = 0
	// AckExpired means the relay no longer holds the file.
	AckExpired AckCode = 1
)

// PullRequest asks a relay to push a stored file to us. Group pulls carry the
// group id; point-to-point pulls carry the public key of the original sender.
type PullRequest struct {
	MessageID uint64
	GroupID   uint64
	IsGroup   bool
	PublicKey string
}

// Marshal encodes the request.
func (p PullRequest) Marshal() []byte {
	b := make([]byte, 0, 16+len(p.PublicKey))
	b = protowire.AppendTag(b, pullFieldMessageID, protowire.VarintType)
	b = protowire.AppendVarint(b, p.MessageID)
	if p.IsGroup {
		b = protowire.AppendTag(b, pullFieldGroupID, protowire.VarintType)
		b = protowire.AppendVarint(b, p.GroupID)
	}
	if p.PublicKey != "" {
		b = protowire.AppendTag(b, pullFieldPublicKey, protowire.BytesType)
		b = protowire.AppendString(b, p.PublicKey)
	}
	return b
}

// UnmarshalPullRequest decodes a pull request.
func UnmarshalPullRequest(data []byte) (PullRequest, error) {
	var p PullRequest
	seenID := false
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == pullFieldMessageID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			p.MessageID, seenID = v, true
			return n, nil
		case num == pullFieldGroupID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			p.GroupID, p.IsGroup = v, true
			return n, nil
		case num == pullFieldPublicKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			p.PublicKey = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return PullRequest{}, err
	}
	if !seenID {
		return PullRequest{}, fmt.Errorf("%w: pull request without message id", ErrMalformedPayload)
	}
	return p, nil
}

// FileTransfer is both the send announcement attached to a relayed upload and
// the acknowledgment a relay attaches to the file it pushes back.
type FileTransfer struct {
	MessageID   uint64
	RealName    []byte
	GroupID     uint64
	IsGroup     bool
	ToPublicKey []byte
	Code        AckCode
}

// Expired reports whether the relay signalled that the file is gone.
func (f FileTransfer) Expired() bool {
	return f.Code == AckExpired
}

// Marshal encodes the message.
func (f FileTransfer) Marshal() []byte {
	b := make([]byte, 0, 24+len(f.RealName)+len(f.ToPublicKey))
	b = protowire.AppendTag(b, transferFieldMessageID, protowire.VarintType)
	b = protowire.AppendVarint(b, f.MessageID)
	if len(f.RealName) > 0 {
		b = protowire.AppendTag(b, transferFieldRealName, protowire.BytesType)
		b = protowire.AppendBytes(b, f.RealName)
	}
	if f.IsGroup {
		b = protowire.AppendTag(b, transferFieldGroupID, protowire.VarintType)
		b = protowire.AppendVarint(b, f.GroupID)
	}
	if len(f.ToPublicKey) > 0 {
		b = protowire.AppendTag(b, transferFieldToPK, protowire.BytesType)
		b = protowire.AppendBytes(b, f.ToPublicKey)
	}
	if f.Code != AckOK {
		b = protowire.AppendTag(b, transferFieldCode, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Code))
	}
	return b
}

// UnmarshalFileTransfer decodes a send announcement or relay acknowledgment.
func UnmarshalFileTransfer(data []byte) (FileTransfer, error) {
	var f FileTransfer
	seenID := false
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == transferFieldMessageID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.MessageID, seenID = v, true
			return n, nil
		case num == transferFieldRealName && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			f.RealName = append([]byte(nil), v...)
			return n, nil
		case num == transferFieldGroupID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.GroupID, f.IsGroup = v, true
			return n, nil
		case num == transferFieldToPK && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			f.ToPublicKey = append([]byte(nil), v...)
			return n, nil
		case num == transferFieldCode && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.Code = AckCode(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return FileTransfer{}, err
	}
	if !seenID {
		return FileTransfer{}, fmt.Errorf("%w: file transfer without message id", ErrMalformedPayload)
	}
	return f, nil
}

// walk iterates the top-level fields of a message. visit returns the number
// of bytes it consumed from the field value, negative on a parse error.
func walk(data []byte, visit func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	if len(data) > limits.MaxRelayPayload {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, limits.ValidateRelayPayload(data))
	}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformedPayload, protowire.ParseError(n))
		}
		data = data[n:]

		m, err := visit(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformedPayload, num, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return nil
}
