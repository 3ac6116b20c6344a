package cartconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/bootstrap/logging"
	domaincart "storefront/internal/domain/cart"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/errs"
	"storefront/internal/usecase/cart"
)

const maxAuditLines = 6

type panel int

const (
	panelProducts panel = iota
	panelCart
)

// ProductSource lists the products the console offers.
type ProductSource interface {
	Products(ctx context.Context) ([]domaincatalog.Product, error)
}

// CategorySource narrows the product list by category or limit when the console
// is started with those options.
type CategorySource interface {
	ProductSource
	ProductsByCategory(ctx context.Context, category string) ([]domaincatalog.Product, error)
	LimitedProducts(ctx context.Context, limit int) ([]domaincatalog.Product, error)
}

type Options struct {
	Category     string
	Limit        int
	PollInterval time.Duration
}

type cartModel struct {
	ctx          context.Context
	catalog      ProductSource
	controller   *cart.Controller
	category     string
	limit        int
	pollInterval time.Duration

	products     []domaincatalog.Product
	productIndex int
	cartIndex    int
	focus        panel
	status       string
	auditLogs    []string
}

type productsLoadedMsg struct {
	items []domaincatalog.Product
	err   error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action    string
	productID domaincart.ProductID
	err       error
}

func NewCartModel(ctx context.Context, catalog ProductSource, controller *cart.Controller, options Options) tea.Model {
	interval := options.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &cartModel{
		ctx:          logging.WithComponent(ctx, "usecase.cartconsole"),
		catalog:      catalog,
		controller:   controller,
		category:     strings.TrimSpace(options.Category),
		limit:        options.Limit,
		pollInterval: interval,
		status:       "loading products",
	}
}

func (m *cartModel) Init() tea.Cmd {
	return tea.Batch(m.loadProductsCmd(), m.tickCmd())
}

func (m *cartModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, m.tickCmd()
	case productsLoadedMsg:
		if msg.err != nil {
			m.status = "load products failed: " + msg.err.Error()
			return m, nil
		}
		m.products = msg.items
		m.productIndex = clampIndex(m.productIndex, len(m.products))
		m.status = fmt.Sprintf("loaded %d products", len(m.products))
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.appendAuditLog(msg.action, msg.productID, "failed")
			logging.Warn(m.ctx, "console action failed", slog.String("action", msg.action), slog.Any("err", errs.Loggable(msg.err)))
		} else {
			m.status = msg.action + " done"
			m.appendAuditLog(msg.action, msg.productID, "ok")
		}
		m.cartIndex = clampIndex(m.cartIndex, len(m.controller.Store().Lines()))
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *cartModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "g":
		m.status = "reloading products"
		return m.loadProductsCmd()
	case "tab":
		if m.focus == panelProducts {
			m.focus = panelCart
		} else {
			m.focus = panelProducts
		}
		return nil
	case "up", "k":
		m.move(-1)
		return nil
	case "down", "j":
		m.move(1)
		return nil
	case "a", "enter":
		return m.addSelectedCmd()
	case "+", "=":
		return m.adjustSelectedLineCmd(1)
	case "-":
		return m.adjustSelectedLineCmd(-1)
	case "d", "x":
		return m.removeSelectedLineCmd()
	case "c":
		return m.clearCmd()
	}
	return nil
}

func (m *cartModel) move(delta int) {
	if m.focus == panelProducts {
		m.productIndex = clampIndex(m.productIndex+delta, len(m.products))
		return
	}
	m.cartIndex = clampIndex(m.cartIndex+delta, len(m.controller.Store().Lines()))
}

func (m *cartModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	busyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))

	store := m.controller.Store()
	lines := store.Lines()

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Storefront Cart"))
	if m.controller.IsBusy() {
		builder.WriteString("  ")
		builder.WriteString(busyStyle.Render(fmt.Sprintf("updating (%d)", m.controller.InFlight())))
	}
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf("category=%s items=%d", firstNonEmpty(m.category, "all"), store.ItemCount())))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render(panelTitle("Products", m.focus == panelProducts)))
	builder.WriteString("\n")
	if len(m.products) == 0 {
		builder.WriteString(dimStyle.Render("- no products"))
		builder.WriteString("\n")
	}
	for index, product := range m.products {
		line := formatProductLine(product, store.QuantityOf(product.CartID()))
		if m.focus == panelProducts && index == m.productIndex {
			builder.WriteString(selectedStyle.Render("> " + line))
		} else {
			builder.WriteString("  " + line)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render(panelTitle("Cart", m.focus == panelCart)))
	builder.WriteString("\n")
	if len(lines) == 0 {
		builder.WriteString(dimStyle.Render("- cart is empty"))
		builder.WriteString("\n")
	}
	for index, line := range lines {
		text := formatCartLine(line)
		if m.focus == panelCart && index == m.cartIndex {
			builder.WriteString(selectedStyle.Render("> " + text))
		} else {
			builder.WriteString("  " + text)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(formatTotals(store.Totals()))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n")
	for _, line := range m.auditLogs {
		builder.WriteString(dimStyle.Render("  " + line))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  tab switch  a add  +/- qty  d remove  c clear  g reload  q quit"))
	return builder.String()
}

func (m *cartModel) tickCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *cartModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		var (
			items []domaincatalog.Product
			err   error
		)
		source, filtered := m.catalog.(CategorySource)
		switch {
		case filtered && m.category != "":
			items, err = source.ProductsByCategory(m.ctx, m.category)
		case filtered && m.limit > 0:
			items, err = source.LimitedProducts(m.ctx, m.limit)
		default:
			items, err = m.catalog.Products(m.ctx)
		}
		if err != nil {
			return productsLoadedMsg{err: err}
		}
		return productsLoadedMsg{items: items}
	}
}

func (m *cartModel) addSelectedCmd() tea.Cmd {
	product, ok := m.selectedProduct()
	if !ok {
		m.status = "no product selected"
		return nil
	}
	m.status = "adding " + product.Title
	return func() tea.Msg {
		err := m.controller.AddToCart(m.ctx, product.CartProduct(), 1)
		return actionDoneMsg{action: "add", productID: product.CartID(), err: err}
	}
}

func (m *cartModel) adjustSelectedLineCmd(delta int) tea.Cmd {
	line, ok := m.selectedLine()
	if !ok {
		m.status = "no cart line selected"
		return nil
	}
	quantity := line.Quantity + delta
	if quantity > domaincart.MaxQuantity {
		m.status = fmt.Sprintf("%s is at the maximum quantity", line.Title)
		return nil
	}
	m.status = fmt.Sprintf("setting %s to %d", line.Title, quantity)
	return func() tea.Msg {
		err := m.controller.UpdateItemQuantity(m.ctx, line.ProductID, quantity)
		return actionDoneMsg{action: "update", productID: line.ProductID, err: err}
	}
}

func (m *cartModel) removeSelectedLineCmd() tea.Cmd {
	line, ok := m.selectedLine()
	if !ok {
		m.status = "no cart line selected"
		return nil
	}
	m.status = "removing " + line.Title
	return func() tea.Msg {
		err := m.controller.RemoveFromCart(m.ctx, line.ProductID)
		return actionDoneMsg{action: "remove", productID: line.ProductID, err: err}
	}
}

func (m *cartModel) clearCmd() tea.Cmd {
	m.status = "clearing cart"
	return func() tea.Msg {
		return actionDoneMsg{action: "clear", err: m.controller.ClearAllItems(m.ctx)}
	}
}

func (m *cartModel) selectedProduct() (domaincatalog.Product, bool) {
	if m.productIndex < 0 || m.productIndex >= len(m.products) {
		return domaincatalog.Product{}, false
	}
	return m.products[m.productIndex], true
}

func (m *cartModel) selectedLine() (domaincart.Line, bool) {
	lines := m.controller.Store().Lines()
	if m.cartIndex < 0 || m.cartIndex >= len(lines) {
		return domaincart.Line{}, false
	}
	return lines[m.cartIndex], true
}

func (m *cartModel) appendAuditLog(action string, productID domaincart.ProductID, result string) {
	line := fmt.Sprintf("%s %s product=%s %s", time.Now().Format("15:04:05"), action, firstNonEmpty(productID.String(), "-"), result)
	m.auditLogs = append(m.auditLogs, line)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[len(m.auditLogs)-maxAuditLines:]
	}
}

func clampIndex(index int, length int) int {
	if length <= 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func panelTitle(title string, focused bool) string {
	if focused {
		return title + " *"
	}
	return title
}

func formatProductLine(product domaincatalog.Product, inCart int) string {
	line := fmt.Sprintf("#%d %s $%.2f [%s]", product.ID, product.Title, product.Price, product.Category)
	if inCart > 0 {
		line += fmt.Sprintf(" (in cart: %d)", inCart)
	}
	return line
}

func formatCartLine(line domaincart.Line) string {
	return fmt.Sprintf("%s x%d @ $%.2f = $%.2f", line.Title, line.Quantity, line.UnitPrice, line.LineTotal())
}

func formatTotals(totals domaincart.Totals) string {
	shipping := fmt.Sprintf("$%.2f", totals.Shipping)
	if totals.Shipping == 0 {
		shipping = "free"
	}
	return fmt.Sprintf(
		"subtotal $%.2f  tax $%.2f  shipping %s  total $%.2f",
		totals.Subtotal,
		totals.Tax,
		shipping,
		totals.Total,
	)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
