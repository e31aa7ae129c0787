package bot

import (
	"fmt"
	"strconv"
	"strings"

	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/share"
)

// Telegram parse modes.
const (
	ParseModeMarkdown   = "Markdown"
	ParseModeMarkdownV2 = "MarkdownV2"
)

const (
	welcomeText = "🎯 👋 *Welcome to the SniperBowlBot!*\n\n" +
		"You a Coin Sniping All Star?\n\n" +
		"This Bot lets you find out who is the best trader. No bots to do the buying or selling. Human hands only! (CHEATERS WILL NOT WIN. IF YOUR BUYING AND SELLING LOOKS EVEN REMOTELY SUSPICIOUS YOU WILL BE DISQUALIFIED) \n\n" +
		"*Register your fresh wallet with no transactions. (/register_wallet)*\n\n" +
		"Use that wallet to buy 0.5 SOL (or the agreed upon contest starting amount) and trade.\n" +
		"We'll track your real PnL.\n\n" +
		"Type /help for commands.\n" +
		"Enjoy! 🚀"

	helpText = "🆘 *SniperBowlBot Help* \\(/start\\)\n\n" +
		"\\(Function 1\\)\n" +
		"• /register\\_wallet – Register your fresh wallet with only your contest trading amount for a Sniper Bowl in it \\(Rebuy as many times as you like\\)\n\n" +
		"\\(Function 2\\)\n\n" +
		"• /sniper\\_leaderboard – Shows the Sniper Bowl leaderboard for the contest \\(wallet\\-based\\. The team wonky will post the leaderboard during competitions\\)\n"

	rulesText = "🎯 *RULES*\n\n" +
		"*NO* Bots To Do Buying or Selling\\.\n\n" +
		"You can set stop losses or auto buys\\.\n\n" +
		"*NO* buying promotions, ads, boosts, or anything other than the coins themselves\\. \n\n" +
		"You can post on any x page to promote yourself or a coin you bought\\. \n" +
		"*You MUST tag @CoinSniperBowl in ALL posts so everyone can track each others actions\\.*\n\n" +
		"1 FRESH wallet only will be counted\\. \\(Buying back in if you lose the intial \\.5 or other agreed initial bag is allowed as many times as you want\\. MUST be on the same wallet\\)\n\n" +
		"WE WANT TO TURN THIS INTO THE SUPER BOWL FOR CRYPTO TRADING\\.\n\n" +
		"*LET THE GAMES BEGIN\\!*"

	msgAskWallet         = "Please enter your Solana wallet address:"
	msgInvalidAddress    = "❌ Invalid Solana address. Please try again with /register_wallet"
	msgWalletTaken       = "🎯 This wallet is already registered in this group."
	msgAlreadyRegistered = "🎯 You already registered your wallet."
	msgRegistered        = "✅ Successfully registered your wallet"
	msgRegisterNoPrice   = "❌ Could not fetch SOL price. Try again later."
	msgRegisterFailed    = "❌ Could not register wallet. Please try again later."

	msgBoardNoPrice  = "❌ Could not fetch SOL price. Leaderboard unavailable."
	msgBoardFailed   = "❌ Could not build the leaderboard. Please try again later."
	msgNoPicks       = "No CA picks found. Paste a CA to add your first pick!"
	msgNoPricedPicks = "No valid picks found with current price data."
	msgNoWallets     = "No wallets here. Use /register_wallet <address> to join!"
	msgTallying      = "🎯 Oh, you think you a Sniper Bowl All Star. Okay, your results are being tallied and will be posted to you shortly."

	msgShareNoPicks = "No CA picks found for you here. Paste a CA first!"
	msgShareNoPrice = "Error fetching SOL price. Try again later."
	msgShareFmt     = "🔗 Share your picks on Twitter:\n\n[Click Here to Tweet](%s)"

	msgIntakeNoPrice    = "Error: Could not fetch SOL price. Try again later."
	msgIntakeUnpriced   = "❌ Could not fetch price for this token. It might be too new or invalid."
	msgIntakeFailed     = "❌ Could not add your pick. Possibly a duplicate or DB error."
	msgIntakeShilledFmt = "🎯 This CA was already shilled here: %s"
	msgIntakeAddedFmt   = "✅ Added your pick for CA: %s\nInvested: %s SOL (~$%.2f)\nReceived ~%.4f tokens.\n"
)

// markdownEscaper escapes user-supplied text for legacy Markdown.
var markdownEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatStake(stake float64) string {
	return strconv.FormatFloat(stake, 'f', -1, 64)
}

func formatPickBoard(board *leaderboard.PickBoard, stake float64) string {
	var b strings.Builder
	b.WriteString("🏆 *Your Picks Leaderboard:* 🏆\n\n")
	for i, e := range board.Entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeMarkdown(e.Symbol))
		fmt.Fprintf(&b, " Mint:`%s`\n", e.Pick.MintAddress)
		fmt.Fprintf(&b, " PnL: %s\n", share.SignedUSD(e.PnLUSD))
		fmt.Fprintf(&b, " Entry(%s SOL in USD): $%.2f\n", formatStake(stake), e.Pick.CostBasisUSD)
		fmt.Fprintf(&b, " Current Token Price: $%.8f\n\n", e.CurrentPriceUSD)
	}
	return b.String()
}

func formatWalletBoard(board *leaderboard.WalletBoard) string {
	var b strings.Builder
	b.WriteString("🏆 *Sniper Bowl Leaderboard:* 🏆\n\n")
	for i, e := range board.Entries {
		fmt.Fprintf(&b, "%d. %s (Wallet: `%s`)\n", i+1, escapeMarkdown(e.Wallet.Username), e.Wallet.WalletAddress)
		fmt.Fprintf(&b, "   Net Worth: $%.2f\n", e.NetWorthUSD)
		fmt.Fprintf(&b, "   PnL: %s\n\n", share.SignedUSD(e.PnLUSD))
	}
	return b.String()
}
