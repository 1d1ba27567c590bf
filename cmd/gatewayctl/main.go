// Command gatewayctl is the admin CLI for the gateway's persisted node and
// sensor tables (SPEC_FULL A5): `list nodes`, `list sensors <node-id>`,
// `add node ...`, `add sensor ...`. Operates directly on the store, never
// through the HTTP surface. Built with urfave/cli/v2, matching the
// subcommand-tree shape of every admin tool in the retrieval pack's
// dependency set.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"sensorgate/internal/config"
	"sensorgate/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "gatewayctl",
		Usage: "inspect and edit the gateway's node/sensor tables",
		Commands: []*cli.Command{
			listCommand(),
			addCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gatewayctl:", err)
		os.Exit(1)
	}
}

func openStore(c *cli.Context) (*store.Store, error) {
	dbPath := os.Getenv("GATEWAY_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("GATEWAY_DB_PATH is not set")
	}
	return store.Open(dbPath)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name: "list",
		Subcommands: []*cli.Command{
			{
				Name: "nodes",
				Action: func(c *cli.Context) error {
					s, err := openStore(c)
					if err != nil {
						return err
					}
					defer s.Close()
					rows, err := s.ListNodes()
					if err != nil {
						return err
					}
					for _, n := range rows {
						fmt.Printf("%d\t%s\t%s\t%s\n", n.PublicID, n.Name, n.RouteType, n.RouteParam)
					}
					return nil
				},
			},
			{
				Name:      "sensors",
				ArgsUsage: "<node-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: gatewayctl list sensors <node-id>")
					}
					publicID, err := strconv.ParseUint(c.Args().First(), 10, 32)
					if err != nil {
						return fmt.Errorf("bad node id: %w", err)
					}
					s, err := openStore(c)
					if err != nil {
						return err
					}
					defer s.Close()
					node, err := s.NodeByPublicID(uint32(publicID))
					if err != nil {
						return err
					}
					rows, err := s.ListSensorsForNode(node.ID)
					if err != nil {
						return err
					}
					for _, sn := range rows {
						fmt.Printf("%d\t%s\t%s\n", sn.PublicID, sn.SensorType, sn.Name)
					}
					return nil
				},
			},
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name: "add",
		Subcommands: []*cli.Command{
			{
				Name:      "node",
				ArgsUsage: "<id> <name> <serial|envirophat> <param>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 4 {
						return fmt.Errorf("usage: gatewayctl add node <id> <name> <serial|envirophat> <param>")
					}
					publicID, err := config.ParseBusID(c.Args().Get(0))
					if err != nil {
						return err
					}
					name, routeType, param := c.Args().Get(1), c.Args().Get(2), c.Args().Get(3)
					if routeType != "serial" && routeType != "envirophat" {
						return fmt.Errorf("route type must be serial or envirophat, got %q", routeType)
					}
					s, err := openStore(c)
					if err != nil {
						return err
					}
					defer s.Close()
					id, err := s.AddNode(publicID, name, routeType, param)
					if err != nil {
						return err
					}
					fmt.Println("added node", id)
					return nil
				},
			},
			{
				Name:      "sensor",
				ArgsUsage: "<node-id> <sensor-id> <kind> <name>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 4 {
						return fmt.Errorf("usage: gatewayctl add sensor <node-id> <sensor-id> <kind> <name>")
					}
					nodePublicID, err := config.ParseBusID(c.Args().Get(0))
					if err != nil {
						return err
					}
					sensorID, err := config.ParseBusID(c.Args().Get(1))
					if err != nil {
						return err
					}
					kind, name := c.Args().Get(2), c.Args().Get(3)

					s, err := openStore(c)
					if err != nil {
						return err
					}
					defer s.Close()
					node, err := s.NodeByPublicID(nodePublicID)
					if err != nil {
						return err
					}
					id, err := s.AddSensor(sensorID, node.ID, kind, name)
					if err != nil {
						return err
					}
					fmt.Println("added sensor", id)
					return nil
				},
			},
		},
	}
}
