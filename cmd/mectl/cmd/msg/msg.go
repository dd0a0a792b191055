package msg

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/config"
	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// MsgCmd is the parent command for application messaging
var MsgCmd = &cobra.Command{
	Use:   "msg",
	Short: "Message the other side of an application",
	Long: `Commands for the message thread attached to an application. Only the
candidate who applied and the employer who owns the job can participate.`,
}

func init() {
	MsgCmd.AddCommand(listCmd)
	MsgCmd.AddCommand(sendCmd)
}

func parseAppID(arg string) (sdk.ApplicationID, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid application id %q", arg)
	}
	return sdk.ApplicationID(id), nil
}

var listCmd = &cobra.Command{
	Use:   "list <application-id>",
	Short: "Show an application's message thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseAppID(args[0])
		if err != nil {
			return err
		}
		msgs, err := ws.Messages(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		if len(msgs) == 0 {
			pterm.Info.Println("No messages yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSENDER\tMESSAGE")
		for _, m := range msgs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Timestamp.Std().Format(time.RFC3339), m.Sender, m.Content)
		}
		w.Flush()
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <application-id> <message>",
	Short: "Send a message on an application thread",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		ws, err := cfg.Provider.Workspace(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseAppID(args[0])
		if err != nil {
			return err
		}
		msgID, err := ws.SendMessage(cmd.Context(), id, args[1])
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		pterm.Success.Printf("Sent message %s\n", msgID)
		return nil
	},
}
