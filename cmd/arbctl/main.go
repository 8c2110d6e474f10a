// arbctl is the single command dispatch layer over the Arborter client:
// every subcommand parses its own flags and calls into arb/client with an
// explicit configuration object. Keys come from the environment or a file
// here, at the edge — library code never reads ambient process state.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/arborter/arborter-go/arb/client"
	"github.com/arborter/arborter-go/arb/feed"
	"github.com/arborter/arborter-go/arb/resolve"
	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/arb/types"
	"github.com/arborter/arborter-go/pkg/logger"
	"github.com/arborter/arborter-go/pkg/tokenstore"
)

const defaultEndpoint = "http://localhost:9090"

// fileConfig is the optional arbctl.yaml.
type fileConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	FeedURL    string        `yaml:"feedUrl"`
	ChainID    uint64        `yaml:"chainId"`
	TokenStore string        `yaml:"tokenStore"`
	Log        logger.Config `yaml:"log"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// .env is a convenience for local runs; absence is not an error
	_ = godotenv.Load()

	cfg := loadFileConfig()
	log, err := logger.Init(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	if err := dispatch(ctx, log, cfg, cmd, args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, log *logrus.Logger, cfg fileConfig, cmd string, args []string) error {
	switch cmd {
	case "login":
		return cmdLogin(ctx, cfg, args)
	case "init-admin":
		return cmdInitAdmin(ctx, cfg, args)
	case "submit":
		return cmdSubmit(ctx, cfg, args)
	case "cancel":
		return cmdCancel(ctx, cfg, args)
	case "markets":
		return cmdMarkets(ctx, cfg, args)
	case "orders":
		return cmdOrders(ctx, cfg, args)
	case "feed":
		return cmdFeed(ctx, log, cfg, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: arbctl <command> [flags]

commands:
  login       authenticate with the wallet key and cache the session token
  init-admin  bootstrap the first administrative identity
  submit      sign and submit an order
  cancel      sign and submit a cancel
  markets     list markets from the configuration snapshot
  orders      list open orders (requires a cached session token)
  feed        stream trades for a market

The wallet key is read from ARBORTER_PRIVATE_KEY (hex) or, if set,
ARBORTER_MNEMONIC with ARBORTER_ACCOUNT_INDEX.
`)
}

func loadFileConfig() fileConfig {
	cfg := fileConfig{Endpoint: defaultEndpoint, TokenStore: "data/tokens"}
	path := os.Getenv("ARBCTL_CONFIG")
	if path == "" {
		path = "arbctl.yaml"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return cfg
}

func loadIdentity() (*signing.Identity, error) {
	if mnemonic := strings.TrimSpace(os.Getenv("ARBORTER_MNEMONIC")); mnemonic != "" {
		var index uint32
		if raw := os.Getenv("ARBORTER_ACCOUNT_INDEX"); raw != "" {
			if _, err := fmt.Sscanf(raw, "%d", &index); err != nil {
				return nil, fmt.Errorf("bad ARBORTER_ACCOUNT_INDEX %q", raw)
			}
		}
		return signing.IdentityFromMnemonic(mnemonic, index)
	}
	key := os.Getenv("ARBORTER_PRIVATE_KEY")
	if key == "" {
		return nil, fmt.Errorf("ARBORTER_PRIVATE_KEY (or ARBORTER_MNEMONIC) is not set")
	}
	return signing.IdentityFromHex(key)
}

func cmdLogin(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	chainID := fs.Uint64("chain-id", cfg.ChainID, "chain id for the signing domain")
	fs.Parse(args)

	id, err := loadIdentity()
	if err != nil {
		return err
	}
	tok, err := client.New(cfg.Endpoint).Authenticate(ctx, id, *chainID)
	if err != nil {
		return err
	}
	if err := cacheToken(cfg, *tok); err != nil {
		fmt.Fprintf(os.Stderr, "warning: token not cached: %v\n", err)
	}
	fmt.Printf("authenticated as %s, token expires %s\n",
		tok.Address, time.Unix(int64(tok.ExpiresAt), 0).Format(time.RFC3339))
	return nil
}

func cmdInitAdmin(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("init-admin", flag.ExitOnError)
	address := fs.String("address", "", "address to install as the first admin")
	fs.Parse(args)
	if *address == "" {
		return fmt.Errorf("-address is required")
	}
	tok, err := client.New(cfg.Endpoint).InitAdmin(ctx, *address)
	if err != nil {
		return err
	}
	if err := cacheToken(cfg, *tok); err != nil {
		fmt.Fprintf(os.Stderr, "warning: token not cached: %v\n", err)
	}
	fmt.Printf("admin installed: %s\n", tok.Address)
	return nil
}

func cmdSubmit(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	market := fs.String("market", "", "market id")
	side := fs.String("side", "", "BUY or SELL")
	quantity := fs.String("quantity", "", "quantity (decimal string)")
	price := fs.String("price", "", "limit price; empty for a market order")
	execType := fs.Int("exec", int(types.ExecutionLimit), "execution type tag")
	fs.Parse(args)

	id, err := loadIdentity()
	if err != nil {
		return err
	}
	c := client.New(cfg.Endpoint)
	snap, err := c.FetchConfig(ctx)
	if err != nil {
		return err
	}
	intent, err := client.BuildOrder(snap, client.OrderParams{
		MarketID:      *market,
		Side:          types.Side(strings.ToUpper(*side)),
		Quantity:      *quantity,
		Price:         *price,
		Account:       id.Address().Hex(),
		ExecutionType: types.ExecutionType(*execType),
	})
	if err != nil {
		return err
	}
	result, err := c.SubmitOrder(ctx, id, intent, snap)
	if err != nil {
		return err
	}
	if result.Accepted {
		fmt.Printf("order accepted, id %d, %d fill(s)\n", result.OrderID, len(result.Trades))
	} else {
		fmt.Println("order not accepted")
	}
	return nil
}

func cmdCancel(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	market := fs.String("market", "", "market id")
	side := fs.String("side", "", "BUY or SELL")
	token := fs.String("token", "", "token address the resting order locks")
	orderID := fs.Uint64("order-id", 0, "id of the resting order")
	fs.Parse(args)

	id, err := loadIdentity()
	if err != nil {
		return err
	}
	result, err := client.New(cfg.Endpoint).CancelOrder(ctx, id, types.CancelIntent{
		MarketID:     *market,
		Side:         types.Side(strings.ToUpper(*side)),
		TokenAddress: *token,
		OrderID:      *orderID,
	})
	if err != nil {
		return err
	}
	if result.Canceled {
		fmt.Println("order canceled")
	} else {
		fmt.Println("order not canceled")
	}
	return nil
}

func cmdMarkets(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("markets", flag.ExitOnError)
	fs.Parse(args)

	snap, err := client.New(cfg.Endpoint).FetchConfig(ctx)
	if err != nil {
		return err
	}
	for _, m := range snap.Markets {
		base, baseTok, err := resolve.TokenBySymbol(snap, m.Base.Network, m.Base.Symbol)
		if err != nil {
			return err
		}
		_, quoteTok, err := resolve.TokenBySymbol(snap, m.Quote.Network, m.Quote.Symbol)
		if err != nil {
			return err
		}
		fmt.Printf("%-20s %s/%s (%d dp) -> %s/%s (%d dp), base chain %d\n",
			m.ID, m.Base.Network, baseTok.Symbol, baseTok.Decimals,
			m.Quote.Network, quoteTok.Symbol, quoteTok.Decimals, base.ChainID)
	}
	return nil
}

func cmdOrders(ctx context.Context, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	fs.Parse(args)

	id, err := loadIdentity()
	if err != nil {
		return err
	}
	store, err := tokenstore.Open(cfg.TokenStore)
	if err != nil {
		return err
	}
	defer store.Close()
	tok, found, err := store.Get(id.Address().Hex())
	if err != nil {
		return err
	}
	if !found || !tok.Usable() {
		return fmt.Errorf("no usable session token cached for %s, run `arbctl login` first", id.Address().Hex())
	}
	orders, err := client.New(cfg.Endpoint).OpenOrders(ctx, tok)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no open orders")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%8d  %-20s %-4s %s @ %s\n", o.OrderID, o.MarketID, o.Side, o.Quantity, o.Price)
	}
	return nil
}

func cmdFeed(ctx context.Context, log *logrus.Logger, cfg fileConfig, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	market := fs.String("market", "", "market id to stream")
	fs.Parse(args)
	if *market == "" {
		return fmt.Errorf("-market is required")
	}
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = strings.Replace(cfg.Endpoint, "http", "ws", 1) + "/v1/feed"
	}
	f, err := feed.Dial(ctx, feedURL, log)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Subscribe(*market); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-f.Events():
			if !ok {
				return fmt.Errorf("feed closed")
			}
			fmt.Printf("%s  %s %s @ %s\n", ev.MarketID, ev.TakerSide, ev.Quantity, ev.Price)
		}
	}
}

func cacheToken(cfg fileConfig, tok types.SessionToken) error {
	store, err := tokenstore.Open(cfg.TokenStore)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Put(tok)
}
