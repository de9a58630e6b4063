// Command storefront is a terminal client for the golden-shen backend:
// browse the catalog, manage the cart, check out, and inspect orders.
// Session state persists between invocations in a local state file (or
// redis when STOREFRONT_REDIS_ADDR is set), so concurrent storefront
// processes observe each other's logins and logouts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/baderboshnak/golden-shen/internal/api"
	"github.com/baderboshnak/golden-shen/internal/authbus"
	"github.com/baderboshnak/golden-shen/internal/cart"
	"github.com/baderboshnak/golden-shen/internal/credstore"
	"github.com/baderboshnak/golden-shen/internal/kv"
	"github.com/baderboshnak/golden-shen/internal/nav"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Config struct {
	APIURL       string
	StateFile    string
	RedisAddr    string
	PollInterval time.Duration
}

func loadConfig() (*Config, error) {
	stateFile := os.Getenv("STOREFRONT_STATE_FILE")
	if stateFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		stateFile = filepath.Join(dir, "golden-shen", "state.json")
	}
	return &Config{
		APIURL:       getEnv("STOREFRONT_API_URL", "http://localhost:5000"),
		StateFile:    stateFile,
		RedisAddr:    os.Getenv("STOREFRONT_REDIS_ADDR"),
		PollInterval: 2 * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type app struct {
	creds       *credstore.Store
	client      *api.Client
	coordinator *cart.Coordinator
	indicator   *nav.Indicator
	watcher     *credstore.Watcher
}

func newApp(cfg *Config) *app {
	var store kv.Store
	if cfg.RedisAddr != "" {
		store = kv.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "storefront")
	} else {
		store = kv.NewFileStore(cfg.StateFile)
	}

	bus := authbus.New()
	creds := credstore.New(store, bus)
	client := api.NewClient(cfg.APIURL, creds)
	coordinator := cart.NewCoordinator(client, creds)
	coordinator.Bind(bus)
	indicator := nav.NewIndicator(creds)
	indicator.Bind(bus)

	return &app{
		creds:       creds,
		client:      client,
		coordinator: coordinator,
		indicator:   indicator,
		watcher:     credstore.NewWatcher(creds, cfg.PollInterval),
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	a := newApp(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront <command> [args]

  login <username> <password>
  logout
  whoami
  shop
  cart
  add <product-id> [quantity]
  update <product-id> <quantity>
  remove <product-id>
  checkout
  orders
  profile
  passwd <current> <new>
  admin-users
  admin-orders
  watch`)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		token, user, err := a.client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if err := a.creds.SetSession(ctx, token, user); err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", user.Username)
		a.printCart()
		return nil

	case "logout":
		target, err := a.indicator.Logout(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("logged out, go to %s\n", target)
		return nil

	case "whoami":
		state := a.indicator.State(ctx)
		if !state.LoggedIn {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s (admin: %v)\n", state.DisplayName, state.Admin)
		return nil

	case "shop":
		products, err := a.client.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%s  %-32s %8s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}
		return nil

	case "cart":
		a.coordinator.Refresh(ctx)
		a.printCart()
		return nil

	case "add":
		if len(args) < 1 {
			return fmt.Errorf("usage: add <product-id> [quantity]")
		}
		qty := 1
		if len(args) > 1 {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer")
			}
			qty = q
		}
		if err := a.coordinator.AddItem(ctx, args[0], qty); err != nil {
			return err
		}
		a.printCart()
		return nil

	case "update":
		if len(args) != 2 {
			return fmt.Errorf("usage: update <product-id> <quantity>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be an integer")
		}
		if err := a.coordinator.UpdateQuantity(ctx, args[0], qty); err != nil {
			return err
		}
		a.printCart()
		return nil

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <product-id>")
		}
		if err := a.coordinator.RemoveItem(ctx, args[0]); err != nil {
			return err
		}
		a.printCart()
		return nil

	case "checkout":
		orderID, err := a.coordinator.Checkout(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("order placed: %s\n", orderID)
		return nil

	case "orders":
		orders, err := a.client.MyOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("%s  %s  %s  %s\n", o.ID, o.CreatedAt.Format(time.RFC3339), o.Status, o.TotalPrice.StringFixed(2))
		}
		return nil

	case "profile":
		u, err := a.client.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("username: %s\nrole: %s\nactive: %v\nmember since: %s\n",
			u.Username, u.Role, u.IsActive, u.CreatedAt.Format("2006-01-02"))
		return nil

	case "passwd":
		if len(args) != 2 {
			return fmt.Errorf("usage: passwd <current> <new>")
		}
		if err := a.client.ChangePassword(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("password changed")
		return nil

	case "admin-users":
		users, err := a.client.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s  %-20s %-6s active=%v\n", u.ID, u.Username, u.Role, u.IsActive)
		}
		return nil

	case "admin-orders":
		orders, err := a.client.AllOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("%s  user=%s  %s  %s\n", o.ID, o.UserID, o.Status, o.TotalPrice.StringFixed(2))
		}
		return nil

	case "watch":
		return a.watch(ctx)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) printCart() {
	snap := a.coordinator.Snapshot()
	if snap.Empty() {
		fmt.Println("cart is empty")
		return
	}
	for _, l := range snap.Lines {
		subtotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Printf("%s  %-32s x%d  %8s\n", l.ProductID, l.Name, l.Quantity, subtotal.StringFixed(2))
	}
	fmt.Printf("items: %d  total: %s\n", snap.ItemCount, snap.Total.StringFixed(2))
}

// watch follows session changes made by other storefront processes and
// reports the derived navigation state until interrupted.
func (a *app) watch(ctx context.Context) error {
	a.indicator.OnChange(func(s nav.State) {
		if !s.LoggedIn {
			fmt.Println("session: logged out")
			return
		}
		fmt.Printf("session: %s (admin: %v), cart items: %d\n",
			s.DisplayName, s.Admin, a.coordinator.Snapshot().ItemCount)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watcher.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}
