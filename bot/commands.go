package bot

import "strings"

const (
	cmdStart      = "/start"
	cmdCryptoFees = "/cryptofees"
	cmdExchange   = "/exchange"
	cmdMarket     = "/market"
	cmdRate       = "/rate"
	cmdSettings   = "/settings"
	cmdFetchRate  = "/fetchrate"
	cmdCancel     = "/cancel"
)

// Command is a single bot menu entry
type Command struct {
	Name        string
	Description string
}

// Commands returns the bot command menu
func Commands() []Command {
	return []Command{
		{Name: cmdCryptoFees, Description: "PayPal/Payoneer fees"},
		{Name: cmdExchange, Description: "PayPal exchange"},
		{Name: cmdMarket, Description: "USDT to EUR market"},
		{Name: cmdRate, Description: "PayPal update rate"},
		{Name: cmdSettings, Description: "Update settings"},
		{Name: cmdFetchRate, Description: "Fetch the reference rate"},
		{Name: cmdCancel, Description: "Cancel the current dialog"},
	}
}

// parseCommand extracts the command out of the text, dropping
// the arguments and the "@bot" mention
func parseCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}

	command, _, _ := strings.Cut(fields[0], "@")

	return strings.ToLower(command), true
}
