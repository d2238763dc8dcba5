package telegram

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"smart-pantry/internal/app"
	"smart-pantry/internal/household"
	"smart-pantry/internal/metrics"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/search"
	"smart-pantry/internal/session"
)

const (
	callbackLogoutYes = "logout|yes"
	callbackLogoutNo  = "logout|no"
)

var errInvitesDisabled = errors.New("household invites are disabled on this bot")

// request is one command invocation.
type request struct {
	app  *app.App
	msg  *tgbotapi.Message
	args string
}

func (r request) userID() int64 { return r.msg.From.ID }

// handler returns the reply text. An empty reply sends nothing.
type handler func(b *Bot, ctx context.Context, req request) (string, error)

type command struct {
	run handler
	// public commands work before /login.
	public bool
	// personal commands act on the sender's own identity, never on a
	// household they joined.
	personal bool
}

var commands = map[string]command{
	"start":     {run: (*Bot).cmdStart, public: true},
	"help":      {run: (*Bot).cmdHelp, public: true},
	"login":     {run: (*Bot).cmdLogin, public: true, personal: true},
	"theme":     {run: (*Bot).cmdTheme, public: true, personal: true},
	"metrics":   {run: (*Bot).cmdMetrics, public: true},
	"pantry":    {run: (*Bot).cmdPantry},
	"add":       {run: (*Bot).cmdAdd},
	"remove":    {run: (*Bot).cmdRemove},
	"buymore":   {run: (*Bot).cmdBuyMore},
	"shopping":  {run: (*Bot).cmdShopping},
	"buy":       {run: (*Bot).cmdBuy},
	"check":     {run: (*Bot).cmdCheck},
	"uncheck":   {run: (*Bot).cmdUncheck},
	"drop":      {run: (*Bot).cmdDrop},
	"checkout":  {run: (*Bot).cmdCheckout},
	"search":    {run: (*Bot).cmdSearch},
	"cook":      {run: (*Bot).cmdCook},
	"save":      {run: (*Bot).cmdSave},
	"saved":     {run: (*Bot).cmdSaved},
	"unsave":    {run: (*Bot).cmdUnsave},
	"schedule":  {run: (*Bot).cmdSchedule},
	"plan":      {run: (*Bot).cmdPlan},
	"move":      {run: (*Bot).cmdMove},
	"unplan":    {run: (*Bot).cmdUnplan},
	"missing":   {run: (*Bot).cmdMissing},
	"tobuy":     {run: (*Bot).cmdToBuy},
	"rate":      {run: (*Bot).cmdRate},
	"community": {run: (*Bot).cmdCommunity},
	"household": {run: (*Bot).cmdHousehold},
	"invite":    {run: (*Bot).cmdInvite},
	"kick":      {run: (*Bot).cmdKick},
	"join":      {run: (*Bot).cmdJoin, personal: true},
	"logout":    {run: (*Bot).cmdLogout, personal: true},
}

func (b *Bot) handleCommand(ctx context.Context, a *app.App, msg *tgbotapi.Message) {
	cmd, ok := commands[msg.Command()]
	if !ok {
		b.reply(msg.Chat.ID, "Unknown command. Send /help for the list.")
		return
	}
	if cmd.personal {
		own, err := b.openApp(ctx, namespaceFor(msg.From.ID))
		if err != nil {
			b.reply(msg.Chat.ID, formatError(err))
			return
		}
		a = own
	}
	if !cmd.public && !a.Authenticated() {
		b.reply(msg.Chat.ID, formatError(app.ErrNotAuthenticated))
		return
	}

	text, err := cmd.run(b, ctx, request{app: a, msg: msg, args: strings.TrimSpace(msg.CommandArguments())})
	if err != nil {
		b.log.Debug("command failed", zap.String("command", msg.Command()), zap.Error(err))
		text = formatError(err)
	}
	if text != "" {
		b.reply(msg.Chat.ID, text)
	}
}

func (b *Bot) cmdStart(_ context.Context, req request) (string, error) {
	s := req.app.Snapshot()
	if s.User == nil {
		return "👋 Welcome to *Smart Pantry*!\n\nSign in with /login or /login your@email.com, then send /help.", nil
	}
	return fmt.Sprintf("👋 Welcome back, %s! You have %d pantry items and %d meals planned.",
		esc(s.User.Name), len(s.Inventory), s.MealPlan.MealCount()), nil
}

func (b *Bot) cmdHelp(_ context.Context, _ request) (string, error) {
	return helpText, nil
}

func (b *Bot) cmdLogin(ctx context.Context, req request) (string, error) {
	var u *session.User
	var err error
	if req.args != "" {
		u, err = session.NewEmailUser(req.args)
	} else {
		name := strings.TrimSpace(req.msg.From.FirstName + " " + req.msg.From.LastName)
		u, err = session.NewProviderUser("telegram", name, "")
	}
	if err != nil {
		return "", err
	}
	if err := req.app.Login(ctx, u); err != nil {
		return "", err
	}

	text := fmt.Sprintf("✅ Signed in as *%s*.", esc(u.Name))
	if s := req.app.Snapshot(); s.User != nil && !s.User.HasSeenTutorial {
		if err := req.app.CompleteTutorial(ctx); err != nil {
			return "", err
		}
		text += "\n\n" + helpText
	}
	return text, nil
}

func (b *Bot) cmdTheme(ctx context.Context, req request) (string, error) {
	theme := req.app.ToggleTheme(ctx)
	return fmt.Sprintf("🎨 Theme set to *%s*.", theme), nil
}

func (b *Bot) cmdMetrics(ctx context.Context, req request) (string, error) {
	if req.userID() != b.cfg.AdminTelegramID {
		return "⛔ *Access Denied*: Admin only.", nil
	}
	if b.opts.Usage == nil {
		return "", app.ErrUnavailable
	}
	usage, err := b.opts.Usage.GetDailyUsage(ctx, 7)
	if err != nil {
		return "", fmt.Errorf("failed to fetch metrics: %w", err)
	}
	return formatUsage(usage, metrics.GetSysHealth(filepath.Clean(b.opts.DataPath))), nil
}

func (b *Bot) cmdPantry(_ context.Context, req request) (string, error) {
	return formatPantry(req.app.Snapshot().Inventory), nil
}

func (b *Bot) cmdAdd(ctx context.Context, req request) (string, error) {
	fields := append(splitFields(req.args), "", "")
	item, err := req.app.AddPantryItem(ctx, fields[0], fields[1], fields[2])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🥫 Added *%s* to your pantry.", esc(item.Name)), nil
}

func (b *Bot) cmdRemove(ctx context.Context, req request) (string, error) {
	i, err := parseIndex(req.args, len(req.app.Snapshot().Inventory))
	if err != nil {
		return "", err
	}
	item, err := req.app.RemovePantryItem(ctx, i)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 Removed *%s*.", esc(item.Name)), nil
}

func (b *Bot) cmdBuyMore(ctx context.Context, req request) (string, error) {
	i, err := parseIndex(req.args, len(req.app.Snapshot().Inventory))
	if err != nil {
		return "", err
	}
	item, err := req.app.BuyMore(ctx, i)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🛒 *%s* is on your shopping list.", esc(item.Name)), nil
}

func (b *Bot) cmdShopping(_ context.Context, req request) (string, error) {
	return formatShopping(req.app.Snapshot().ShoppingList), nil
}

func (b *Bot) cmdBuy(ctx context.Context, req request) (string, error) {
	item, err := req.app.AddShoppingItem(ctx, req.args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🛒 Added *%s*.", esc(item.Name)), nil
}

// shoppingID maps a 1-based list number to the item id.
func shoppingID(a *app.App, arg string) (string, error) {
	list := a.Snapshot().ShoppingList
	i, err := parseIndex(arg, len(list))
	if err != nil {
		return "", err
	}
	return list[i].ID, nil
}

func (b *Bot) setChecked(ctx context.Context, req request, checked bool) (string, error) {
	id, err := shoppingID(req.app, req.args)
	if err != nil {
		return "", err
	}
	if err := req.app.SetShoppingChecked(ctx, id, checked); err != nil {
		return "", err
	}
	return formatShopping(req.app.Snapshot().ShoppingList), nil
}

func (b *Bot) cmdCheck(ctx context.Context, req request) (string, error) {
	return b.setChecked(ctx, req, true)
}

func (b *Bot) cmdUncheck(ctx context.Context, req request) (string, error) {
	return b.setChecked(ctx, req, false)
}

func (b *Bot) cmdDrop(ctx context.Context, req request) (string, error) {
	id, err := shoppingID(req.app, req.args)
	if err != nil {
		return "", err
	}
	if err := req.app.RemoveShoppingItem(ctx, id); err != nil {
		return "", err
	}
	return formatShopping(req.app.Snapshot().ShoppingList), nil
}

func (b *Bot) cmdCheckout(ctx context.Context, req request) (string, error) {
	n, err := req.app.Checkout(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Moved %d items into your pantry.", n), nil
}

// runSearch shows a progress message while the search is in flight.
func (b *Bot) runSearch(ctx context.Context, req request, sreq search.Request, status string) (string, error) {
	b.withStatus(req.msg.Chat.ID, status, func() string {
		res, err := req.app.SearchRecipes(ctx, sreq)
		if err != nil {
			if errors.Is(err, search.ErrNothingToSearch) {
				return "🥫 Your pantry is empty. Add items first or use /search with a dish name."
			}
			return formatError(err)
		}
		s := req.app.Snapshot()
		return formatRecipes(res, s.Inventory, s.Ratings)
	})
	return "", nil
}

func (b *Bot) cmdSearch(ctx context.Context, req request) (string, error) {
	if req.args == "" {
		return "", fmt.Errorf("%w: usage /search dish name", errBadArgs)
	}
	return b.runSearch(ctx, req, search.Request{Query: req.args}, "🔎 *Searching the web...*")
}

func (b *Bot) cmdCook(ctx context.Context, req request) (string, error) {
	sreq, err := parseCookArgs(req.args)
	if err != nil {
		return "", err
	}
	return b.runSearch(ctx, req, sreq, "🧑‍🍳 *Thinking...*\n(Creating recipes from your pantry)")
}

// lastResult returns recipe n of the most recent search.
func lastResult(a *app.App, arg string) (recipe.StructuredRecipe, error) {
	recipes := a.Snapshot().LastSearch.Recipes
	i, err := parseIndex(arg, len(recipes))
	if err != nil {
		return recipe.StructuredRecipe{}, err
	}
	return recipes[i], nil
}

func (b *Bot) cmdSave(ctx context.Context, req request) (string, error) {
	r, err := lastResult(req.app, req.args)
	if err != nil {
		return "", err
	}
	saved, err := req.app.SaveRecipe(ctx, r)
	if errors.Is(err, recipe.ErrAlreadySaved) {
		return fmt.Sprintf("📚 *%s* is already in your collection.", esc(r.Title)), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📚 Saved *%s*.", esc(saved.Title)), nil
}

func (b *Bot) cmdSaved(_ context.Context, req request) (string, error) {
	return formatSaved(req.app.Snapshot().SavedRecipes), nil
}

func (b *Bot) cmdUnsave(ctx context.Context, req request) (string, error) {
	saved := req.app.Snapshot().SavedRecipes
	i, err := parseIndex(req.args, len(saved))
	if err != nil {
		return "", err
	}
	if err := req.app.UnsaveRecipe(ctx, saved[i].ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 Removed *%s* from your collection.", esc(saved[i].Title)), nil
}

// cmdSchedule accepts a result number of the last search or a recipe title.
func (b *Bot) cmdSchedule(ctx context.Context, req request) (string, error) {
	if req.args == "" {
		return "", fmt.Errorf("%w: usage /schedule n or /schedule title", errBadArgs)
	}
	var meal planner.MealPlanItem
	var err error
	if r, perr := lastResult(req.app, req.args); perr == nil {
		meal, err = req.app.ScheduleRecipe(ctx, r)
	} else {
		meal, err = req.app.ScheduleByTitle(ctx, req.args)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📅 *%s* added to today's meals.", esc(meal.Recipe.Title)), nil
}

func (b *Bot) cmdPlan(_ context.Context, req request) (string, error) {
	planText, missingText := formatPlanMarkdownParts(req.app.Snapshot().MealPlan, req.app.MissingIngredients())
	return planText + "\n\n" + missingText, nil
}

func (b *Bot) cmdMove(ctx context.Context, req request) (string, error) {
	n, err := parseNumbers(req.args, 3)
	if err != nil {
		return "", fmt.Errorf("%w: usage /move day meal day", errBadArgs)
	}
	if err := req.app.MoveMeal(ctx, n[0], n[1], n[2]); err != nil {
		return "", err
	}
	planText, _ := formatPlanMarkdownParts(req.app.Snapshot().MealPlan, nil)
	return planText, nil
}

func (b *Bot) cmdUnplan(ctx context.Context, req request) (string, error) {
	n, err := parseNumbers(req.args, 2)
	if err != nil {
		return "", fmt.Errorf("%w: usage /unplan day meal", errBadArgs)
	}
	if err := req.app.RemoveMeal(ctx, n[0], n[1]); err != nil {
		return "", err
	}
	planText, _ := formatPlanMarkdownParts(req.app.Snapshot().MealPlan, nil)
	return planText, nil
}

func (b *Bot) cmdMissing(_ context.Context, req request) (string, error) {
	_, missingText := formatPlanMarkdownParts(nil, req.app.MissingIngredients())
	return missingText, nil
}

// cmdToBuy adds the plan's missing ingredients, or those of search result n.
func (b *Bot) cmdToBuy(ctx context.Context, req request) (string, error) {
	var n int
	var err error
	if req.args == "" {
		n, err = req.app.AddPlanMissingToShopping(ctx)
	} else {
		var r recipe.StructuredRecipe
		if r, err = lastResult(req.app, req.args); err != nil {
			return "", err
		}
		n, err = req.app.AddRecipeMissingToShopping(ctx, r)
	}
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "✅ Nothing new to buy.", nil
	}
	return fmt.Sprintf("🛒 Added %d items to your shopping list.", n), nil
}

func (b *Bot) cmdRate(ctx context.Context, req request) (string, error) {
	stars, title, comment, err := parseRating(req.args)
	if err != nil {
		return "", err
	}
	r, err := req.app.RateRecipe(ctx, title, stars, comment)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("⭐ Rated *%s* %d/5.", esc(r.RecipeTitle), r.Stars), nil
}

func (b *Bot) cmdCommunity(_ context.Context, req request) (string, error) {
	return formatLeaderboard(req.app.Community()), nil
}

func (b *Bot) cmdHousehold(_ context.Context, req request) (string, error) {
	return formatHousehold(req.app.Snapshot().Household), nil
}

func (b *Bot) cmdInvite(ctx context.Context, req request) (string, error) {
	m, token, err := req.app.InviteMember(ctx, req.args)
	if err != nil {
		return "", err
	}
	if token == "" {
		return fmt.Sprintf("✉️ Invited *%s*.", esc(m.Email)), nil
	}
	return fmt.Sprintf("✉️ Invited *%s*.\n\nAsk them to sign in with /login %s and send:\n`/join %s`",
		esc(m.Email), esc(m.Email), token), nil
}

func (b *Bot) cmdKick(ctx context.Context, req request) (string, error) {
	members := req.app.Snapshot().Household.Members
	i, err := parseIndex(req.args, len(members))
	if err != nil {
		return "", err
	}
	if err := req.app.RemoveMember(ctx, members[i].ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("👋 Removed *%s* from the household.", esc(members[i].Name)), nil
}

// cmdJoin redeems an invite. The joining user must be signed in with the
// invited address; afterwards every command acts on the inviter's household.
func (b *Bot) cmdJoin(ctx context.Context, req request) (string, error) {
	if b.deps.Invites == nil {
		return "", errInvitesDisabled
	}
	claims, err := b.deps.Invites.Parse(req.args)
	if err != nil {
		return "", err
	}

	own := namespaceFor(req.userID())
	if link, err := b.householdLink(ctx, req.userID()); err != nil {
		return "", err
	} else if link != "" {
		return "", fmt.Errorf("%w: you already joined a household, /logout to leave it", errBadArgs)
	}
	if claims.Namespace == own || !strings.HasPrefix(claims.Namespace, namespacePrefix) {
		return "", household.ErrInviteMismatch
	}
	user := req.app.Snapshot().User
	if user == nil || !strings.EqualFold(user.Email, claims.Email) {
		return "", household.ErrInviteMismatch
	}

	owner, err := b.openApp(ctx, claims.Namespace)
	if err != nil {
		return "", err
	}
	if err := owner.AcceptInvite(ctx, claims); err != nil {
		return "", err
	}
	if err := b.setHouseholdLink(ctx, req.userID(), claims.Namespace); err != nil {
		return "", err
	}
	return fmt.Sprintf("🏠 You joined *%s*.", esc(owner.Snapshot().Household.Name)), nil
}

func (b *Bot) cmdLogout(_ context.Context, req request) (string, error) {
	msg := tgbotapi.NewMessage(req.msg.Chat.ID, "Sign out and delete your pantry, lists, recipes and plan?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, sign out", callbackLogoutYes),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackLogoutNo),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		return "", fmt.Errorf("failed to send confirmation: %w", err)
	}
	return "", nil
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil || query.From == nil {
		return
	}

	var text string
	switch query.Data {
	case callbackLogoutYes:
		text = b.logout(ctx, query.From.ID)
	case callbackLogoutNo:
		text = "👍 Still signed in."
	default:
		return
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("failed to edit message", zap.Error(err))
	}
}

// logout leaves a joined household, or clears the user's own data.
func (b *Bot) logout(ctx context.Context, userID int64) string {
	link, err := b.householdLink(ctx, userID)
	if err != nil {
		return formatError(err)
	}
	if link != "" {
		if err := b.setHouseholdLink(ctx, userID, ""); err != nil {
			return formatError(err)
		}
		return "👋 You left the household. Your own pantry is back."
	}

	a, err := b.openApp(ctx, namespaceFor(userID))
	if err != nil {
		return formatError(err)
	}
	if err := a.Logout(ctx); err != nil {
		b.log.Error("logout failed", zap.Int64("user_id", userID), zap.Error(err))
		return formatError(err)
	}
	return "👋 Signed out. Your data was deleted."
}
