package cmd

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "topic index commands",
}

func init() {
	topicCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	topicCmd.AddCommand(setTopicsCmd())
	topicCmd.AddCommand(searchTopicsCmd())

	rootCmd.AddCommand(topicCmd)
}

func setTopicsCmd() *cobra.Command {
	var aid string
	var topics []string

	var required = []string{"article-id"}

	command := &cobra.Command{
		Use:     "set",
		Short:   "replace the topics of an article",
		Example: "article topic set -a <article-id> -t go -t systems",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if _, err := uuid.Parse(aid); err != nil {
				logrus.Error("invalid article id, expected a valid uuid")
				return
			}

			client, _ := newClient()
			defer client.Close()

			if err := client.UpdateArticleTopics(context.Background(), aid, topics); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("topics updated for article: %s", aid)
		},
	}

	command.Flags().StringVarP(&aid, "article-id", "a", "", "article id (required)")
	command.Flags().StringArrayVarP(&topics, "topic", "t", nil, "topic, repeatable")

	return command
}

func searchTopicsCmd() *cobra.Command {
	var topic string

	var required = []string{"topic"}

	command := &cobra.Command{
		Use:     "search",
		Short:   "search the topic index by prefix",
		Example: "article topic search -t go",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, _ := newClient()
			defer client.Close()

			topics, err := client.SearchTopics(context.Background(), topic)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Topic", "Article"})
			for _, t := range topics {
				table.Append([]string{t.Topic, t.AID})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&topic, "topic", "t", "", "topic prefix (required)")

	return command
}
