package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "article"

	defaultServerURL = "http://localhost:4001"
)

var Token string

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())

	rootCmd.AddCommand(contextCommand)
}

type Context struct {
	Token  string `json:"token"`
	Server string `json:"server"`
}

// saves the context info to the config file in ./.tmp
func setContextCommand() *cobra.Command {
	var token string
	var server string
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if token == "" {
				color.Red(`missing: --token`)
				return
			}

			if server == "" {
				server = defaultServerURL
			}

			writeContext(Context{
				Token:  token,
				Server: server,
			})
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&token, "token", "t", "", "token")
	command.Flags().StringVarP(&server, "server", "s", "", "server url")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := readContext()
			fmt.Println("server:", cfg.Server)
			fmt.Println("token:", cfg.Token)
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			writeContext(Context{})
			fmt.Println("context reset")
		},
	}

	return command
}

func writeContext(context Context) {
	if err := os.MkdirAll("./.tmp", os.ModePerm); err != nil {
		fmt.Println("error creating config dir: ", err)
		return
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")
	viper.Set("context", context)

	if err := viper.WriteConfigAs("./.tmp/" + configFileName + ".yml"); err != nil {
		fmt.Println("error writing config file: ", err)
	}
}

func readContext() Context {
	var ctx Context

	// create file if it doesn't exist
	if _, err := os.Stat("./.tmp/" + configFileName + ".yml"); os.IsNotExist(err) {
		writeContext(Context{})
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error reading context: ", err)
	}

	if ctx.Server == "" {
		ctx.Server = defaultServerURL
	}

	return ctx
}
