package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/opd-ai/toxfer/interfaces"
	"github.com/spf13/cobra"
)

func (a *app) recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List and maintain transfer records",
	}
	cmd.AddCommand(a.recordsListCmd())
	cmd.AddCommand(a.recordsShowCmd())
	cmd.AddCommand(a.recordsCancelPendingCmd())
	return cmd
}

func (a *app) recordsListCmd() *cobra.Command {
	var (
		status string
		chatID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfer records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := interfaces.RecordFilter{
				Status: interfaces.RecordStatus(status),
				ChatID: chatID,
				Limit:  limit,
			}
			if status != "" && !filter.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListTransferRecords(filter)
			if err != nil {
				return err
			}
			writeRecordTable(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only records with this status")
	cmd.Flags().StringVar(&chatID, "chat", "", "only records of this chat")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records")
	return cmd
}

func (a *app) recordsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <transfer-id>",
		Short: "Show every field of one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.ReadTransferRecord(args[0])
			if err != nil {
				return err
			}
			writeRecordDetail(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func (a *app) recordsCancelPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-pending",
		Short: "Mark transfers left waiting, loading or paused as canceled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.CancelPendingRecords()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "canceled %d pending transfer(s)\n", n)
			return nil
		},
	}
}

func direction(rec *interfaces.TransferRecord) string {
	if rec.Outgoing {
		return "out"
	}
	return "in"
}

// newTable returns a borderless, left-aligned table writing to out.
func newTable(out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func writeRecordTable(out io.Writer, records []*interfaces.TransferRecord) {
	table := newTable(out)
	table.SetHeader([]string{"ID", "Dir", "Kind", "Status", "Size", "Name", "Created"})
	for _, rec := range records {
		table.Append([]string{
			rec.TransferID,
			direction(rec),
			rec.Kind.String(),
			string(rec.Status),
			strconv.FormatUint(rec.Size, 10),
			rec.FileName,
			rec.CreatedAt.Format(time.RFC3339),
		})
	}
	table.Render()
}

func writeRecordDetail(out io.Writer, rec *interfaces.TransferRecord) {
	table := newTable(out)
	fields := []struct {
		name  string
		value any
	}{
		{"transfer_id", rec.TransferID},
		{"message_id", rec.MessageID},
		{"chat_id", rec.ChatID},
		{"peer_public_key", rec.PeerPublicKey},
		{"direction", direction(rec)},
		{"kind", rec.Kind},
		{"status", rec.Status},
		{"paused_by", rec.PausedBy},
		{"handle", rec.Handle},
		{"size", rec.Size},
		{"file_name", rec.FileName},
		{"file_path", rec.FilePath},
		{"group", rec.IsGroup},
		{"group_id", rec.GroupID},
		{"offline", rec.Offline},
		{"expired", rec.Expired},
		{"opened", rec.Opened},
		{"duration", rec.Duration},
		{"created_at", rec.CreatedAt.Format(time.RFC3339)},
		{"updated_at", rec.UpdatedAt.Format(time.RFC3339)},
	}
	for _, f := range fields {
		table.Append([]string{f.name + ":", fmt.Sprint(f.value)})
	}
	table.Render()
}
