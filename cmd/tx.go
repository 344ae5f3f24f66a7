package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "ledger audit record commands",
}

func init() {
	txCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	txCmd.AddCommand(getTxCmd())
	txCmd.AddCommand(listTxCmd())

	rootCmd.AddCommand(txCmd)
}

func getTxCmd() *cobra.Command {
	var txID string

	var required = []string{"tx-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a ledger audit record",
		Example: "article tx get -x <tx-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, _ := newClient()
			defer client.Close()

			record, err := client.GetUpchainTx(context.Background(), txID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Tx", "Owner", "Content-Type", "Msg-Type", "Size", "Created"})
			table.Append([]string{
				strconv.FormatUint(uint64(record.ID), 10),
				record.TxID,
				record.UID,
				record.ContentType,
				record.MsgType,
				strconv.Itoa(len(record.Content)),
				record.CreatedAt.Format("2006-01-02 15:04:05"),
			})
			table.Render()
		},
	}

	command.Flags().StringVarP(&txID, "tx-id", "x", "", "ledger transaction id (required)")

	return command
}

func listTxCmd() *cobra.Command {
	var msgType string

	var required = []string{"msg-type"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list ledger audit records by classification",
		Example: "article tx list -m article",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, _ := newClient()
			defer client.Close()

			records, err := client.GetUpchainTxs(context.Background(), msgType)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Tx", "Owner", "Content-Type", "Msg-Type", "Created"})
			for _, record := range records {
				table.Append([]string{
					strconv.FormatUint(uint64(record.ID), 10),
					record.TxID,
					record.UID,
					record.ContentType,
					record.MsgType,
					record.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&msgType, "msg-type", "m", "", "classification tag (required)")

	return command
}
