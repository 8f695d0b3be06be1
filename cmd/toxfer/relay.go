package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/opd-ai/toxfer/relay"
	"github.com/spf13/cobra"
)

const (
	payloadPull     = "pull"
	payloadTransfer = "transfer"
)

func (a *app) relayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Work with relay account payloads",
	}
	cmd.AddCommand(relayDecodeCmd())
	return cmd
}

func relayDecodeCmd() *cobra.Command {
	var payloadType string
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a pull request or a relay file announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("payload is not hex: %w", err)
			}
			return decodePayload(cmd.OutOrStdout(), payloadType, data)
		},
	}
	cmd.Flags().StringVarP(&payloadType, "type", "t", payloadTransfer, "payload type: pull or transfer")
	return cmd
}

func decodePayload(out io.Writer, payloadType string, data []byte) error {
	switch payloadType {
	case payloadPull:
		p, err := relay.UnmarshalPullRequest(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "message_id: %d\n", p.MessageID)
		if p.IsGroup {
			fmt.Fprintf(out, "group_id: %d\n", p.GroupID)
		}
		if p.PublicKey != "" {
			fmt.Fprintf(out, "public_key: %s\n", p.PublicKey)
		}
	case payloadTransfer:
		f, err := relay.UnmarshalFileTransfer(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "message_id: %d\n", f.MessageID)
		if len(f.RealName) > 0 {
			fmt.Fprintf(out, "real_name: %s\n", f.RealName)
		}
		if f.IsGroup {
			fmt.Fprintf(out, "group_id: %d\n", f.GroupID)
		}
		if len(f.ToPublicKey) > 0 {
			fmt.Fprintf(out, "to_public_key: %s\n", f.ToPublicKey)
		}
		fmt.Fprintf(out, "code: %d\n", f.Code)
		fmt.Fprintf(out, "expired: %t\n", f.Expired())
	default:
		return fmt.Errorf("unknown payload type %q", payloadType)
	}
	return nil
}
