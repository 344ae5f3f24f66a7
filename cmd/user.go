package cmd

import (
	"context"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "user commands",
}

func init() {
	userCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	userCmd.AddCommand(registerUserCmd())
	userCmd.AddCommand(getUserCmd())
	userCmd.AddCommand(updateUserCmd())

	rootCmd.AddCommand(userCmd)
}

func registerUserCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "register",
		Short:   "register the authenticated user",
		Example: "article user register",
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newClient()
			defer client.Close()

			user, err := client.CreateUser(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("user registered with uid: %s", user.UID)
		},
	}

	return command
}

func getUserCmd() *cobra.Command {
	var uid string

	var required = []string{"uid"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a user",
		Example: "article user get -u <uid>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, _ := newClient()
			defer client.Close()

			user, err := client.GetUser(context.Background(), uid)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"UID", "Meta", "Created"})
			table.Append([]string{user.UID, user.Meta, user.CreatedAt.Format("2006-01-02 15:04:05")})
			table.Render()
		},
	}

	command.Flags().StringVarP(&uid, "uid", "u", "", "user id (required)")

	return command
}

func updateUserCmd() *cobra.Command {
	var meta string

	var required = []string{"meta"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update the authenticated user's meta info",
		Example: `article user update -m '{"arweaveAddress":"..."}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, _ := newClient()
			defer client.Close()

			user, err := client.UpdateUser(context.Background(), meta)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("user updated: %s", user.UID)
		},
	}

	command.Flags().StringVarP(&meta, "meta", "m", "", "serialized meta info (required)")

	return command
}
