package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/emrgen/article"
	"github.com/emrgen/article/internal/ledger"
	"github.com/emrgen/article/internal/richtext"
	"github.com/emrgen/article/internal/session"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createArticleCmd())
	rootCmd.AddCommand(getArticleCmd())
	rootCmd.AddCommand(listArticlesCmd())
	rootCmd.AddCommand(publishArticleCmd())
	rootCmd.AddCommand(rankArticlesCmd())
	rootCmd.AddCommand(deleteArticleCmd())
}

// newClient builds an RPC client from the saved context.
func newClient() (article.Client, Context) {
	cfg := readContext()
	return article.NewClient(cfg.Server, cfg.Token), cfg
}

func createArticleCmd() *cobra.Command {
	var contentFile string
	var uid string
	var mirror bool
	var ledgerURL string

	var required = []string{"uid", "content"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create an article",
		Long:    `create an article from a rich-text content file and publish it`,
		Example: "article create -u <uid> -c <content-file> [--mirror --ledger <url>]",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			publishDraft(uid, "", contentFile, mirror, ledgerURL)
		},
	}

	command.Flags().StringVarP(&uid, "uid", "u", "", "author uid (required)")
	command.Flags().StringVarP(&contentFile, "content", "c", "", "content file (required)")
	command.Flags().BoolVar(&mirror, "mirror", false, "mirror a rendered snapshot to the ledger")
	command.Flags().StringVar(&ledgerURL, "ledger", "", "ledger gateway url")

	command.Flags().SortFlags = false

	return command
}

func publishArticleCmd() *cobra.Command {
	var aid string
	var uid string
	var contentFile string
	var mirror bool
	var ledgerURL string

	var required = []string{"article-id", "uid", "content"}

	command := &cobra.Command{
		Use:     "publish",
		Short:   "publish an existing article",
		Example: "article publish -a <article-id> -u <uid> -c <content-file>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if _, err := uuid.Parse(aid); err != nil {
				logrus.Error("invalid article id, expected a valid uuid")
				return
			}

			publishDraft(uid, aid, contentFile, mirror, ledgerURL)
		},
	}

	command.Flags().StringVarP(&aid, "article-id", "a", "", "article id (required)")
	command.Flags().StringVarP(&uid, "uid", "u", "", "author uid (required)")
	command.Flags().StringVarP(&contentFile, "content", "c", "", "content file (required)")
	command.Flags().BoolVar(&mirror, "mirror", false, "mirror a rendered snapshot to the ledger")
	command.Flags().StringVar(&ledgerURL, "ledger", "", "ledger gateway url")

	command.Flags().SortFlags = false

	return command
}

// publishDraft runs one edit session end to end: start, sync the content
// file into the draft, publish.
func publishDraft(uid, aid, contentFile string, mirror bool, ledgerURL string) {
	content, err := os.ReadFile(contentFile)
	if err != nil {
		logrus.Error(err)
		return
	}

	doc, err := richtext.Parse(content)
	if err != nil {
		logrus.Error(err)
		return
	}

	client, _ := newClient()
	defer client.Close()

	var chain ledger.Ledger
	if ledgerURL != "" {
		chain = ledger.NewGatewayClient(ledgerURL)
	}

	sess := session.NewSession(client, chain, uid)
	ctx := context.Background()

	if err := sess.Start(ctx, aid); err != nil {
		logrus.Error(err)
		return
	}

	sess.Sync(doc)

	if err := sess.Publish(ctx, session.PublishOptions{Mirror: mirror}); err != nil {
		logrus.Error(err)
		return
	}

	draft := sess.Draft()
	logrus.Infof("article published with id: %s", draft.AID)
}

func getArticleCmd() *cobra.Command {
	var aid string

	var required = []string{"article-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get an article",
		Example: "article get -a <article-id>",
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

			res, err := client.GetArticle(context.Background(), aid)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Owner", "Chain", "Updated"})
			table.Append([]string{res.AID, res.Title, res.UID, res.Chain, res.UpdatedAt.Format("2006-01-02 15:04:05")})
			table.Render()
		},
	}

	command.Flags().StringVarP(&aid, "article-id", "a", "", "article id (required)")

	return command
}

func listArticlesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "list",
		Short:   "list articles",
		Example: "article list",
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newClient()
			defer client.Close()

			articles, err := client.ListArticles(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Owner", "Updated"})
			for _, a := range articles {
				table.Append([]string{a.AID, a.Title, a.UID, a.UpdatedAt.Format("2006-01-02 15:04:05")})
			}
			table.Render()
		},
	}

	return command
}

func rankArticlesCmd() *cobra.Command {
	var topic string
	var topK int

	command := &cobra.Command{
		Use:     "rank",
		Short:   "rank the top articles under a topic",
		Example: "article rank -t <topic> -k 10",
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newClient()
			defer client.Close()

			articles, err := client.RankTopicsTopK(context.Background(), topic, topK)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Owner", "Updated"})
			for _, a := range articles {
				table.Append([]string{a.AID, a.Title, a.UID, a.UpdatedAt.Format("2006-01-02 15:04:05")})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&topic, "topic", "t", "", "topic")
	command.Flags().IntVarP(&topK, "top-k", "k", 10, "number of articles")

	return command
}

func deleteArticleCmd() *cobra.Command {
	var aid string

	var required = []string{"article-id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete an article",
		Example: "article delete -a <article-id>",
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

			if err := client.DeleteArticle(context.Background(), aid); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("article deleted")
		},
	}

	command.Flags().StringVarP(&aid, "article-id", "a", "", "article id (required)")

	return command
}

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Yellow("provided: %s\n", provided)
		}

		return true
	}

	return false
}
