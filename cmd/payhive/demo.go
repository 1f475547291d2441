package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/calculator"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/payment"
	"github.com/mmynk/payhive/internal/storage/memory"
	"github.com/mmynk/payhive/pkg/logging"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	creditStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	debitStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	nameColumn   = lipgloss.NewStyle().Width(18)
	amountColumn = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
)

const (
	authorizedSymbol = "✓"
	pendingSymbol    = "…"
	transferSymbol   = "→"
)

type DemoCmd struct {
	UserEmail string `help:"Email of the demo user." default:"you@example.com" name:"user-email"`
	UserName  string `help:"Display name of the demo user." default:"You" name:"user-name"`
}

func (cmd *DemoCmd) Run(ctx *kong.Context, globals *Globals) error {
	level := globals.LogLevel
	if level == "" {
		level = "warn"
	}
	logging.Setup(level)

	runCtx := context.Background()
	store := memory.New()
	defer store.Close()

	l := ledger.New(store)
	user := models.NewUser(cmd.UserEmail, cmd.UserName, "")
	group, err := l.SeedDemo(runCtx, user.AsMember(user.CreatedAt))
	if err != nil {
		return err
	}

	balances, err := l.Balances(runCtx, group.ID)
	if err != nil {
		return err
	}
	plan, err := l.Settlements(runCtx, group.ID)
	if err != nil {
		return err
	}

	writeReport(ctx.Stdout, group, balances, plan)
	return nil
}

// writeReport prints a group's expenses, balances and settlement plan.
func writeReport(w io.Writer, group *models.Group, balances []calculator.MemberBalance, plan []models.Settlement) {
	name := func(userID string) string {
		if m, ok := group.Member(userID); ok {
			return m.DisplayName()
		}
		return userID
	}
	required := calculator.RequiredApprovals(len(group.Members))

	_, _ = fmt.Fprintln(w, titleStyle.Render(group.Name))
	summary := fmt.Sprintf("%d members, %d approvals needed", len(group.Members), required)
	if group.Description != "" {
		summary = group.Description + " · " + summary
	}
	_, _ = fmt.Fprintln(w, mutedStyle.Render(summary))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerStyle.Render("Expenses"))
	for _, e := range group.Expenses {
		symbol := creditStyle.Render(authorizedSymbol)
		status := ""
		if !e.IsAuthorized {
			symbol = mutedStyle.Render(pendingSymbol)
			status = mutedStyle.Render(" pending")
		}
		_, _ = fmt.Fprintf(w, "  %s %s%s  paid by %s  %d/%d approvals%s\n",
			symbol,
			nameColumn.Render(e.Description),
			amountColumn.Render(money(e.Amount)),
			name(e.PaidBy),
			len(e.Approvals),
			required,
			status,
		)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerStyle.Render("Balances"))
	for _, b := range balances {
		amount := signedMoney(b.NetBalance)
		switch {
		case calculator.IsZero(b.NetBalance):
			amount = mutedStyle.Render(amount)
		case b.NetBalance > 0:
			amount = creditStyle.Render(amount)
		default:
			amount = debitStyle.Render(amount)
		}
		_, _ = fmt.Fprintf(w, "  %s%s\n", nameColumn.Render(name(b.MemberID)), amountColumn.Render(amount))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerStyle.Render("Settlement plan"))
	if len(plan) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("  Everyone is settled up"))
		return
	}
	for _, s := range plan {
		fee := payment.PayPalFee(decimal.NewFromFloat(s.Amount))
		_, _ = fmt.Fprintf(w, "  %s %s pays %s %s %s\n",
			headerStyle.Render(transferSymbol),
			name(s.FromUserID),
			name(s.ToUserID),
			money(s.Amount),
			mutedStyle.Render("(PayPal fee $"+fee.StringFixed(2)+")"),
		)
	}
}

func money(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}

func signedMoney(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	switch d.Sign() {
	case 1:
		return "+$" + d.StringFixed(2)
	case -1:
		return "-$" + strings.TrimPrefix(d.StringFixed(2), "-")
	default:
		return "$0.00"
	}
}
