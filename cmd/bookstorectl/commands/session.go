package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"bookstore-api/cmd/bookstorectl/output"
	"bookstore-api/cmd/bookstorectl/session"
)

var (
	loginEmail    string
	loginPassword string
	sessionFile   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a local operator session",
	Long: `Record a local operator session. Nothing is sent to the server: any
non-empty email and password are accepted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		sess, err := store.Login(loginEmail, loginPassword, time.Now())
		if err != nil {
			output.Error("Login failed: %v", err)
			return err
		}
		output.Success("Logged in as %s (%s)", sess.Name, sess.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the local operator session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		if err := store.Logout(); err != nil {
			return err
		}
		output.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the local operator session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		sess, err := store.Current()
		if errors.Is(err, session.ErrNotLoggedIn) {
			output.Warning("Not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		output.Info("%s <%s>", sess.Name, sess.Email)
		output.Muted("role: %s, since %s", sess.Role, sess.LoginTime.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Operator email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Operator password")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file (defaults to $XDG_CONFIG_HOME/bookstore/session.json)")
	_ = rootCmd.PersistentFlags().MarkHidden("session-file")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func sessionStore() (*session.Store, error) {
	path := sessionFile
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return session.NewStore(path), nil
}
