// Command storefront is the shopper and admin client for the storefront API.
//
//	storefront [--api URL] <command> [args]
//
//	products [--category c]        list the catalog by section
//	product <id>                   show one product
//	cart show|add|remove|clear     manage the local cart
//	checkout --fullname --gcash --address --proof FILE
//	admin create|update|delete     manage products
//	orders list|delete             manage orders
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/client"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

const usage = `usage: storefront [--api URL] [--timeout D] <command>

  products [--category c]
  product <id>
  cart show | add <id> [--qty n] | remove <n> | clear
  checkout --fullname NAME --gcash NUMBER --address ADDR --proof FILE
  admin create --name N --price P --category C [--description D] [--stock S] --image FILE...
  admin update <id> [--name N] [--price P] [--category C] [--description D] [--stock S]
  admin delete <id>
  orders list | delete <id>
`

type app struct {
	api  *client.Client
	cart cart.Storage
	fs   afero.Fs
	out  io.Writer
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	fs := afero.NewOsFs()

	if err := run(context.Background(), os.Args[1:], cfg, fs, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, fs afero.Fs, out io.Writer) error {
	global := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", cfg.APIBaseURL, "storefront API base URL")
	timeout := global.Duration("timeout", 15*time.Second, "request timeout")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := global.Args()
	if len(rest) == 0 {
		return errUsage
	}

	a := &app{
		api:  client.New(*apiURL, *timeout),
		cart: cart.NewFileStorage(fs, cfg.CartDir),
		fs:   fs,
		out:  out,
	}

	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "products":
		return a.products(ctx, rest)
	case "product":
		return a.product(ctx, rest)
	case "cart":
		return a.cartCmd(ctx, rest)
	case "checkout":
		return a.checkout(ctx, rest)
	case "admin":
		return a.admin(ctx, rest)
	case "orders":
		return a.orders(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) products(ctx context.Context, args []string) error {
	fl := flags("products")
	only := fl.String("category", "", "show only this section")
	if err := parse(fl, args); err != nil {
		return err
	}
	ps, err := a.api.ListProducts(ctx)
	if err != nil {
		return err
	}

	groups := catalog.GroupByCategory(ps)
	sections := append(append([]catalog.Category(nil), catalog.Categories...), catalog.CategoryUncategorized)
	want, _ := catalog.ParseCategory(*only)
	for _, c := range sections {
		if *only != "" && c != want {
			continue
		}
		if len(groups[c]) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "== %s ==\n", c)
		for _, p := range groups[c] {
			fmt.Fprintf(a.out, "  %s  %-30s ₱%s  (stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}
	}
	return nil
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.api.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n  id:       %s\n  price:    ₱%s\n  category: %s\n  stock:    %d\n",
		p.Name, p.ID, p.Price.StringFixed(2), p.Category, p.Stock)
	if p.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", p.Description)
	}
	for _, u := range p.Images {
		fmt.Fprintf(a.out, "  image: %s\n", u)
	}
	return nil
}

func (a *app) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	c, err := cart.Load(a.cart)
	if err != nil {
		return err
	}

	switch args[0] {
	case "show":
		return a.printCart(c)
	case "add":
		fl := flags("cart add")
		qty := fl.Int("qty", 1, "quantity to add")
		if err := parse(fl, args[1:]); err != nil {
			return err
		}
		if fl.NArg() != 1 {
			return errUsage
		}
		p, err := a.api.GetProduct(ctx, fl.Arg(0))
		if err != nil {
			return err
		}
		if err := c.AddQuantity(p.ID, p.Name, p.Price, *qty); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %dx %s\n", *qty, p.Name)
		return a.printCart(c)
	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: line number must be an integer", errUsage)
		}
		// nomor baris 1-based di layar
		if err := c.Remove(n - 1); err != nil {
			return err
		}
		return a.printCart(c)
	case "clear":
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "cart cleared")
		return nil
	default:
		return errUsage
	}
}

func (a *app) printCart(c *cart.Cart) error {
	lines := c.Summary()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return nil
	}
	for i, l := range lines {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, l)
	}
	fmt.Fprintf(a.out, "items: %d  total: ₱%s\n", c.Count(), c.Total().StringFixed(2))
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fl := flags("checkout")
	fullname := fl.String("fullname", "", "full name")
	gcash := fl.String("gcash", "", "GCash number")
	address := fl.String("address", "", "delivery address")
	proof := fl.String("proof", "", "payment proof image")
	if err := parse(fl, args); err != nil {
		return err
	}

	c, err := cart.Load(a.cart)
	if err != nil {
		return err
	}
	d := cart.Details{Fullname: *fullname, GCash: *gcash, Address: *address}
	if *proof != "" {
		up := a.upload(*proof)
		d.Proof = &up
	}
	o, err := c.Checkout(ctx, a.api, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order %s placed, total ₱%s\n", o.ID, o.Total.StringFixed(2))
	return nil
}

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "create":
		fl := flags("admin create")
		in := catalog.CreateInput{}
		fl.StringVar(&in.Name, "name", "", "product name")
		fl.StringVar(&in.Price, "price", "", "price")
		fl.StringVar(&in.Category, "category", "", strings.Join(categoryNames(), " | "))
		fl.StringVar(&in.Description, "description", "", "description")
		fl.StringVar(&in.Stock, "stock", "", "units in stock")
		images := fl.StringArray("image", nil, "image file, repeat up to 6 times")
		if err := parse(fl, args[1:]); err != nil {
			return err
		}
		for _, path := range *images {
			in.Images = append(in.Images, a.upload(path))
		}
		p, err := a.api.CreateProduct(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created %s (%s)\n", p.ID, p.Name)
		return nil
	case "update":
		fl := flags("admin update")
		name := fl.String("name", "", "product name")
		price := fl.String("price", "", "price")
		category := fl.String("category", "", "category")
		description := fl.String("description", "", "description")
		stock := fl.Int("stock", 0, "units in stock")
		if err := parse(fl, args[1:]); err != nil {
			return err
		}
		if fl.NArg() != 1 {
			return errUsage
		}
		// hanya flag yang diisi yang dikirim
		var in catalog.UpdateInput
		if fl.Changed("name") {
			in.Name = name
		}
		if fl.Changed("price") {
			d, err := decimal.NewFromString(*price)
			if err != nil {
				return fmt.Errorf("price: %w", err)
			}
			in.Price = &d
		}
		if fl.Changed("category") {
			in.Category = category
		}
		if fl.Changed("description") {
			in.Description = description
		}
		if fl.Changed("stock") {
			in.Stock = stock
		}
		p, err := a.api.UpdateProduct(ctx, fl.Arg(0), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "updated %s: ₱%s, stock %d\n", p.ID, p.Price.StringFixed(2), p.Stock)
		return nil
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.api.DeleteProduct(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %s\n", args[1])
		return nil
	default:
		return errUsage
	}
}

func (a *app) orders(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		list, err := a.api.ListOrders(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "no orders")
		}
		for _, o := range list {
			fmt.Fprintf(a.out, "%s  %s  %s  ₱%s  %s\n", o.ID, o.CreatedAt.Format(time.DateTime), o.Fullname, o.Total.StringFixed(2), o.GCash)
			for _, it := range o.Items {
				fmt.Fprintf(a.out, "    %dx %s - ₱%s\n", it.Quantity, it.Name, it.Subtotal().StringFixed(2))
			}
			fmt.Fprintf(a.out, "    proof: %s\n", o.PaymentProof)
		}
		return nil
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.api.DeleteOrder(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted order %s\n", args[1])
		return nil
	default:
		return errUsage
	}
}

func (a *app) upload(file string) media.Upload {
	return media.Upload{
		Filename: filepath.Base(file),
		Open:     func() (io.ReadCloser, error) { return a.fs.Open(file) },
	}
}

func parse(fl *pflag.FlagSet, args []string) error {
	if err := fl.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func flags(name string) *pflag.FlagSet {
	fl := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fl.SetOutput(io.Discard)
	return fl
}

func categoryNames() []string {
	out := make([]string, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		out = append(out, string(c))
	}
	return out
}
