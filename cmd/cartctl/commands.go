package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	"github.com/lateleria/storefront/internal/application/checkout"
	"github.com/lateleria/storefront/internal/domain/cart"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/cartstore"
	"github.com/lateleria/storefront/internal/infrastructure/ordergateway"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// cartNamespace scopes the session ids derived from cart names
var cartNamespace = uuid.MustParse("5b0f3c1e-7a2d-4c8e-9f61-2d4a8b7e3c10")

type usageError string

func (e usageError) Error() string { return string(e) }

type appConfig struct {
	Server  string
	Dir     string
	Session string
	Timeout time.Duration
}

type app struct {
	session  string
	products cartapp.ProductFinder
	sessions *cartapp.SessionService
	checkout *checkout.Service
	out      io.Writer
	logger   *zap.Logger
}

func newApp(cfg appConfig, out io.Writer, logger *zap.Logger) (*app, error) {
	store, err := cartstore.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("cart directory: %w", err)
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	catalog, err := ordergateway.NewCatalogClient(cfg.Server, client)
	if err != nil {
		return nil, err
	}
	gateway, err := ordergateway.NewHTTPGateway(cfg.Server)
	if err != nil {
		return nil, err
	}

	return &app{
		session:  sessionKey(cfg.Session),
		products: catalog,
		sessions: cartapp.NewSessionService(store, catalog, logger),
		checkout: checkout.NewService(gateway, logger),
		out:      out,
		logger:   logger,
	}, nil
}

// sessionKey maps a human cart name onto a stable session id
func sessionKey(name string) string {
	if cartapp.IsValidSessionID(name) {
		return name
	}
	return uuid.NewSHA1(cartNamespace, []byte(name)).String()
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "add":
		return a.add(ctx, args)
	case "set":
		return a.set(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "show":
		return a.show(ctx)
	case "clear":
		resp, err := a.sessions.Clear(ctx, a.session)
		if err != nil {
			return err
		}
		a.printCart(resp)
		return nil
	case "checkout":
		return a.submit(ctx, args)
	default:
		return usageError(fmt.Sprintf("unknown command %q", command))
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("usage: add <slug> <qty> [name=value ...]")
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	variants, err := parseVariants(args[2:])
	if err != nil {
		return err
	}
	resp, err := a.sessions.AddItem(ctx, a.session, cartapp.AddItemRequest{
		Product:          args[0],
		Quantity:         qty,
		SelectedVariants: variants,
	})
	if err != nil {
		return err
	}
	a.printCart(resp)
	return nil
}

func (a *app) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("usage: set <slug> <qty> [name=value ...]")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError(fmt.Sprintf("quantity must be a number, got %q", args[1]))
	}
	variants, err := parseVariants(args[2:])
	if err != nil {
		return err
	}
	productID, err := a.resolveLine(ctx, args[0])
	if err != nil {
		return err
	}
	resp, err := a.sessions.UpdateQuantity(ctx, a.session, cartapp.UpdateItemRequest{
		ProductID:        productID,
		Quantity:         qty,
		SelectedVariants: variants,
	})
	if err != nil {
		return err
	}
	a.printCart(resp)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("usage: remove <slug> [name=value ...]")
	}
	variants, err := parseVariants(args[1:])
	if err != nil {
		return err
	}
	productID, err := a.resolveLine(ctx, args[0])
	if err != nil {
		return err
	}
	resp, err := a.sessions.RemoveItem(ctx, a.session, cartapp.RemoveItemRequest{
		ProductID:        productID,
		SelectedVariants: variants,
	})
	if err != nil {
		return err
	}
	a.printCart(resp)
	return nil
}

// resolveLine finds the product id of a cart line by slug, asking the
// storefront only when the cart has no line for it
func (a *app) resolveLine(ctx context.Context, slug string) (uuid.UUID, error) {
	resp, err := a.sessions.Get(ctx, a.session)
	if err != nil {
		return uuid.Nil, err
	}
	for _, item := range resp.Items {
		if item.ProductSlug == slug {
			return item.ProductID, nil
		}
	}
	product, err := a.products.FindPurchasable(ctx, slug)
	if err != nil {
		return uuid.Nil, err
	}
	return product.ID, nil
}

func (a *app) show(ctx context.Context) error {
	resp, err := a.sessions.Get(ctx, a.session)
	if err != nil {
		return err
	}
	a.printCart(resp)
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("usage: checkout <shipping.json>")
	}
	info, err := readShipping(args[0])
	if err != nil {
		return err
	}

	var result *checkout.OrderResult
	err = a.sessions.WithCart(ctx, a.session, func(e *cart.Engine) error {
		var submitErr error
		result, submitErr = a.checkout.Submit(ctx, e, info)
		return submitErr
	})

	var invalid trade.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make([]string, 0, len(invalid))
		for field, problem := range invalid {
			fields = append(fields, field+": "+problem)
		}
		slices.Sort(fields)
		return fmt.Errorf("datos de envío no válidos (%s)", strings.Join(fields, ", "))
	}
	var rejected *checkout.SubmissionError
	if errors.As(err, &rejected) {
		return errors.New(rejected.Message)
	}
	if err != nil {
		return err
	}

	a.logger.Info("order placed", zap.String("order_number", result.OrderNumber))
	fmt.Fprintf(a.out, "Pedido %s creado\n", result.OrderNumber)
	return nil
}

func (a *app) printCart(resp *cartapp.CartResponse) {
	if len(resp.Items) == 0 {
		fmt.Fprintln(a.out, "El carrito está vacío")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCTO\tVARIANTES\tCANT.\tPRECIO\tTOTAL")
	for _, item := range resp.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			item.ProductSlug,
			formatVariants(item.SelectedVariants),
			item.Quantity,
			item.Price.StringFixed(2),
			item.LineTotal().StringFixed(2),
		)
	}
	_ = w.Flush()
	fmt.Fprintf(a.out, "Subtotal: %s €\nIVA (21%%): %s €\nTotal: %s €\n",
		resp.Totals.Subtotal.StringFixed(2),
		resp.Totals.Tax.StringFixed(2),
		resp.Totals.Total.StringFixed(2),
	)
}

func formatVariants(v cart.VariantSelection) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(v))
	for _, pair := range v.Signature() {
		parts = append(parts, pair.Name+"="+pair.Value)
	}
	return strings.Join(parts, ",")
}

func parseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(s)
	if err != nil || qty < 1 {
		return 0, usageError(fmt.Sprintf("quantity must be a positive number, got %q", s))
	}
	return qty, nil
}

func parseVariants(args []string) (cart.VariantSelection, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(cart.VariantSelection, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" || value == "" {
			return nil, usageError(fmt.Sprintf("variant must be name=value, got %q", arg))
		}
		out[name] = value
	}
	return out, nil
}

func readShipping(path string) (trade.ShippingInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return trade.ShippingInfo{}, fmt.Errorf("failed to read shipping data: %w", err)
	}
	var info trade.ShippingInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return trade.ShippingInfo{}, fmt.Errorf("failed to parse shipping data: %w", err)
	}
	return info, nil
}
