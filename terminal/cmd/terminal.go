package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartResponse "github.com/jhamir14/restaurant/cart/pkg/response"
	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/constants"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
	"github.com/jhamir14/restaurant/terminal/internal/api"
	"github.com/jhamir14/restaurant/terminal/internal/cart"
	"github.com/jhamir14/restaurant/terminal/internal/checkout"
	"github.com/jhamir14/restaurant/terminal/internal/metadata"
	"github.com/jhamir14/restaurant/terminal/internal/notify"
	"github.com/jhamir14/restaurant/terminal/internal/orders"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

// Terminal is one logged in session against the api.
type Terminal struct {
	session  *session.Session
	client   *api.Client
	cart     *cart.Store
	checkout *checkout.Orchestrator
	orders   *orders.Controller
	notifier notify.Notifier
	out      io.Writer
}

func NewTerminal(client *api.Client, sess *session.Session, notifier notify.Notifier, out io.Writer) *Terminal {
	store := cart.NewStore(client, sess, notifier)
	store.Bind(sess)
	return &Terminal{
		session:  sess,
		client:   client,
		cart:     store,
		checkout: checkout.NewOrchestrator(store, notifier),
		orders:   orders.NewController(client, sess, notifier),
		notifier: notifier,
		out:      out,
	}
}

type options struct {
	token   string
	verbose bool
}

// NewCommand is the terminal command tree. Every sub command loads the
// terminal config, logs in with the configured token and runs one action.
func NewCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "terminal",
		Short: "Order from the restaurant and manage orders from the command line",
	}
	root.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token, overrides terminal.token")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every step")

	run := func(action func(c context.Context, t *Terminal, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd.Context(), opts, cmd.OutOrStdout(), func(c context.Context, t *Terminal) error {
				return action(c, t, args)
			})
		}
	}

	var (
		productID int64
		quantity  int32
		draft     metadata.Draft
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(c context.Context, t *Terminal, _ []string) error {
			if err := t.cart.Add(c, productID, quantity); err != nil {
				return err
			}
			return t.printCart()
		}),
	}
	add.Flags().Int64Var(&productID, "product-id", 0, "product to add")
	add.Flags().Int32VarP(&quantity, "quantity", "q", 1, "how many")
	_ = add.MarkFlagRequired("product-id")

	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Turn the cart into an order",
		Args:  cobra.NoArgs,
		RunE: run(func(c context.Context, t *Terminal, _ []string) error {
			if err := t.cart.Load(c); err != nil {
				return err
			}
			identity, _ := t.session.Current()
			placed, err := t.checkout.Submit(c, draft, identity)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(t.out, "order_id=%d order_type=%s\n", placed.OrderID, placed.OrderType)
			return err
		}),
	}
	checkoutCmd.Flags().StringVarP(&draft.OrderType, "type", "t", "", "mesa or delivery")
	checkoutCmd.Flags().Int32Var(&draft.TableNumber, "table", 0, "table number for mesa orders")
	checkoutCmd.Flags().StringVar(&draft.DeliveryAddress, "address", "", "delivery address")
	checkoutCmd.Flags().StringVar(&draft.DeliveryPhone, "phone", "", "delivery phone")
	checkoutCmd.Flags().StringVar(&draft.PaymentMethod, "payment", "", "efectivo, tarjeta, yape or plin")
	checkoutCmd.Flags().Int64Var(&draft.TargetUserID, "user-id", 0, "customer to order for, admins only")
	_ = checkoutCmd.MarkFlagRequired("type")

	root.AddCommand(
		&cobra.Command{
			Use:   "cart",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				if err := t.cart.Load(c); err != nil {
					return err
				}
				return t.printCart()
			}),
		},
		add,
		&cobra.Command{
			Use:   "update ITEM_ID QUANTITY",
			Short: "Change the quantity of a cart line",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(c context.Context, t *Terminal, args []string) error {
				itemID, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err = t.cart.UpdateQuantity(c, itemID, args[1]); err != nil {
					return err
				}
				return t.printCart()
			}),
		},
		&cobra.Command{
			Use:   "remove ITEM_ID",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(c context.Context, t *Terminal, args []string) error {
				itemID, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err = t.cart.Remove(c, itemID); err != nil {
					return err
				}
				return t.printCart()
			}),
		},
		checkoutCmd,
		&cobra.Command{
			Use:   "orders",
			Short: "Show the active orders",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				list, err := t.orders.List(c)
				if err != nil {
					return err
				}
				return t.printOrders(list)
			}),
		},
		&cobra.Command{
			Use:   "history",
			Short: "Show the paid orders",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				list, err := t.orders.ListHistory(c)
				if err != nil {
					return err
				}
				return t.printOrders(list)
			}),
		},
		&cobra.Command{
			Use:   "status ORDER_ID STATUS",
			Short: "Set the status of an order, admins only",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(c context.Context, t *Terminal, args []string) error {
				orderID, err := parseID(args[0])
				if err != nil {
					return err
				}
				list, err := t.orders.SetStatus(c, orderID, args[1])
				if err != nil {
					return err
				}
				return t.printOrders(list)
			}),
		},
		&cobra.Command{
			Use:   "products",
			Short: "Show the catalog",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				products, err := t.client.FindProducts(c)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNOMBRE\tPRECIO")
				for _, p := range products {
					fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "menu",
			Short: "Show today's menu",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				products, err := t.client.FindMenuToday(c)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNOMBRE\tPRECIO")
				for _, p := range products {
					fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "customers",
			Short: "Show the registered customers, admins only",
			Args:  cobra.NoArgs,
			RunE: run(func(c context.Context, t *Terminal, _ []string) error {
				customers, err := t.client.FindCustomers(c)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSUARIO\tTELÉFONO\tDIRECCIÓN")
				for _, cu := range customers {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cu.ID, cu.Username, deref(cu.Phone), deref(cu.Address))
				}
				return w.Flush()
			}),
		},
	)
	return root
}

func runTerminal(c context.Context, opts *options, out io.Writer, action func(c context.Context, t *Terminal) error) error {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.TraceLevel
	}
	logger := log.Console(level).
		With().
		Str(log.KeyAppName, constants.AppTerminal).
		Str(log.KeyTag, "main runTerminal").
		Logger()
	c = logger.WithContext(c)

	cfg := config.Get(c, constants.AppTerminal)
	logger = logger.With().Str(log.KeyBaseURL, cfg.Terminal.BaseURL).Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Trace().Msg("initializing otel sdk")
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppTerminal, cfg.Otel)
	if err != nil {
		return fmt.Errorf("failed initializing otel sdk with error=%w", err)
	}
	defer func() {
		if err := inOtel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Trace().Msg("initialized otel sdk")

	token := cfg.Terminal.Token
	if opts.token != "" {
		token = opts.token
	}

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Trace().Msg("logging in")
	sess := session.New()
	t := NewTerminal(api.NewClient(cfg.Terminal.BaseURL, cfg.Terminal.Timeout, sess), sess, notify.NewLogNotifier(os.Stderr), out)
	if token != "" {
		identity, err := sess.Login(token)
		if err != nil {
			return fmt.Errorf("failed logging in with error=%w", err)
		}
		logger = logger.With().Int64(log.KeyUserID, identity.UserID).Bool(log.KeyIsAdmin, identity.IsAdmin).Logger()
	}
	logger.Trace().Msg("logged in")

	return action(logger.WithContext(c), t)
}

func (t *Terminal) printCart() error {
	return printCart(t.out, t.cart.Snapshot())
}

func printCart(out io.Writer, cart cartResponse.Cart) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCTO\tCANTIDAD\tPRECIO\tSUBTOTAL")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			item.ID,
			item.Product.Name,
			item.Quantity,
			item.Product.Price.StringFixed(2),
			item.Subtotal.StringFixed(2),
		)
	}
	fmt.Fprintf(w, "\t\t\tTOTAL\t%s\n", cart.Total.StringFixed(2))
	return w.Flush()
}

func (t *Terminal) printOrders(list []orderResponse.Order) error {
	return printOrders(t.out, list)
}

func printOrders(out io.Writer, list []orderResponse.Order) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PEDIDO\tCLIENTE\tTIPO\tDESTINO\tTOTAL\tESTADO\tFECHA")
	for _, order := range list {
		destination := deref(order.DeliveryAddress)
		if order.TableNumber != nil {
			destination = fmt.Sprintf("mesa %d", *order.TableNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			order.ID,
			order.UserName,
			order.OrderType,
			destination,
			order.Total.StringFixed(2),
			order.Status,
			order.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id=%s", raw)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
