// Command robinwood-sim runs the full traceability scenario in-process: a
// tree is grown under an allowed label, cut into boards, assembled into a
// table, and every change of custody goes through a mandated, signed and
// validated transport.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/ledger"
	"github.com/ncoquelet/RobinWood/merchandise"
	"github.com/ncoquelet/RobinWood/metaref"
	"github.com/ncoquelet/RobinWood/store"
)

type sim struct {
	ctx    context.Context
	ledger *ledger.Ledger
	keys   map[string]*identity.Keypair
	names  map[identity.Address]string
	items  map[uint64]string
}

func main() {
	fs := flag.NewFlagSet("robinwood-sim", flag.ExitOnError)
	keysDir := fs.String("keys", "", "key store directory (default: ephemeral keys)")
	_ = fs.Parse(os.Args[1:])

	if err := run(*keysDir); err != nil {
		color.Red("simulation failed: %v", err)
		os.Exit(1)
	}
}

func run(keysDir string) error {
	color.Cyan("Welcome to the RobinWood protocol")
	fmt.Println("Here is an example of wood traceability where a tree is transformed into a table after numerous exchanges between stakeholders.")

	s := &sim{
		ctx:   context.Background(),
		keys:  make(map[string]*identity.Keypair),
		names: make(map[identity.Address]string),
		items: make(map[uint64]string),
	}

	dir := identity.NewDirectory()
	color.Cyan("\nCreating actors:")
	for _, name := range []string{"authority", "certifier", "producer", "transformer", "trader", "maker", "transporter", "distributor"} {
		kp, err := loadOrEphemeral(keysDir, name)
		if err != nil {
			return err
		}
		addr, err := dir.RegisterKeypair(kp)
		if err != nil {
			return err
		}
		s.keys[name] = kp
		s.names[addr] = name
		fmt.Printf(" - %-12s %s\n", name, addr)
	}

	l, err := ledger.Open(s.ctx, ledger.Config{
		Authority: s.addr("authority"),
		Verifier:  dir,
		Log:       store.NewMemLog(),
	})
	if err != nil {
		return err
	}
	s.ledger = l

	if err := s.addNewLabel(); err != nil {
		return err
	}
	tree, err := s.produceAndTransferTree()
	if err != nil {
		return err
	}
	boards, err := s.produceAndTransferBoards(tree)
	if err != nil {
		return err
	}
	table, err := s.produceAndTransferTable(boards)
	if err != nil {
		return err
	}

	fmt.Println("--------------------------------------------")
	return s.displayTraceability(table)
}

func loadOrEphemeral(keysDir, name string) (*identity.Keypair, error) {
	if keysDir == "" {
		return identity.GenerateKeypair(identity.SchemeEd25519, rand.Reader)
	}
	ks, err := identity.OpenKeyStore(keysDir)
	if err != nil {
		return nil, err
	}
	return ks.LoadOrGenerate(name)
}

func (s *sim) addr(name string) identity.Address {
	return s.keys[name].Address()
}

func (s *sim) addNewLabel() error {
	uri := metaref.PointerFor([]byte("Preserved Forest label litepaper"), "label.json").String()
	labelID, err := s.ledger.SubmitLabel(s.ctx, s.addr("certifier"), uri)
	if err != nil {
		return err
	}
	color.Green("\nSubmit new label: OK")

	if err := s.ledger.AllowLabel(s.ctx, s.addr("authority"), labelID, true); err != nil {
		return err
	}
	color.Green("Allow new label: OK")

	if err := s.ledger.Certify(s.ctx, s.addr("certifier"), s.addr("producer"), labelID); err != nil {
		return err
	}
	color.Green("Certify producer: OK")
	return nil
}

func (s *sim) produceAndTransferTree() (uint64, error) {
	uri := metaref.PointerFor([]byte("New Tree metadata"), "tree.json").String()
	tree, err := s.ledger.MintWithLabel(s.ctx, s.addr("producer"), uri, 0)
	if err != nil {
		return 0, err
	}
	s.items[tree] = "New Tree"
	color.Green("\nProducer mints \"New Tree\": OK")

	fmt.Println("\nProducer transfers tree to a transformer:")
	return tree, s.transfer("producer", "transformer", tree)
}

func (s *sim) produceAndTransferBoards(tree uint64) ([]uint64, error) {
	uris := []string{
		metaref.PointerFor([]byte("New Board metadata"), "board1.json").String(),
		metaref.PointerFor([]byte("New Board 2 metadata"), "board2.json").String(),
	}
	boards, err := s.ledger.MintBatchWithParent(s.ctx, s.addr("transformer"), uris, tree)
	if err != nil {
		return nil, err
	}
	s.items[boards[0]] = "New Board"
	s.items[boards[1]] = "New Board 2"
	color.Green("\nTransformer mints new boards from tree: OK")

	fmt.Println("\nTransformer transfers boards to a trader:")
	for _, board := range boards {
		if err := s.transfer("transformer", "trader", board); err != nil {
			return nil, err
		}
	}
	fmt.Println("\nTrader transfers boards to a maker:")
	for _, board := range boards {
		if err := s.transfer("trader", "maker", board); err != nil {
			return nil, err
		}
	}
	return boards, nil
}

func (s *sim) produceAndTransferTable(boards []uint64) (uint64, error) {
	uri := metaref.PointerFor([]byte("New Table metadata"), "produit.json").String()
	table, err := s.ledger.MintWithParents(s.ctx, s.addr("maker"), uri, boards)
	if err != nil {
		return 0, err
	}
	s.items[table] = "New Table"
	color.Green("\nMaker mints new table from boards: OK")

	fmt.Println("\nMaker transfers table to a distributor:")
	return table, s.transfer("maker", "distributor", table)
}

// transfer runs the full mandate -> accept -> validate protocol with the
// transporter as carrier.
func (s *sim) transfer(from, to string, itemID uint64) error {
	carrier := s.keys["transporter"]
	if err := s.ledger.MandateTransport(s.ctx, s.addr(from), carrier.Address(), s.addr(to), itemID); err != nil {
		return err
	}
	fmt.Printf(" - mandate transporter to deliver %q to %s: OK\n", s.items[itemID], to)

	salt, err := merchandise.NewSalt(nil)
	if err != nil {
		return err
	}
	sig, err := carrier.Sign(merchandise.SigningPayload(itemID, carrier.Address(), s.addr(to), salt))
	if err != nil {
		return err
	}
	if err := s.ledger.AcceptTransport(s.ctx, carrier.Address(), itemID, merchandise.Acceptance{Salt: salt, Sig: sig}); err != nil {
		return err
	}
	fmt.Println(" - transporter accepts and signs the mandate: OK")

	if err := s.ledger.ValidateTransport(s.ctx, s.addr(to), itemID, carrier.Address(), salt); err != nil {
		return err
	}
	fmt.Printf(" - %s validates delivery: OK\n", to)
	return nil
}

// displayTraceability replays the event stream into the provenance tree.
func (s *sim) displayTraceability(itemID uint64) error {
	events, err := s.ledger.Events(s.ctx, 1)
	if err != nil {
		return err
	}
	node, err := event.FoldProvenance(events, itemID)
	if err != nil {
		return err
	}
	color.Cyan("\nIdentity card of %s", s.items[itemID])
	s.printNode(node, 0)
	return nil
}

func (s *sim) printNode(node *event.ProvenanceNode, depth int) {
	if node == nil {
		return
	}
	pre := strings.Repeat("  ", depth)
	owner := s.names[node.Owner]
	if owner == "" {
		owner = node.Owner.String()
	}
	fmt.Printf("%s# %s (owner: %s)\n", pre, s.items[node.ItemID], owner)
	if node.LabelID != nil {
		fmt.Printf("%s  > minted under label %d\n", pre, *node.LabelID)
	}
	if len(node.Parents) > 0 {
		fmt.Printf("%s  > minted from:\n", pre)
		for _, parent := range node.Parents {
			s.printNode(parent, depth+1)
		}
	}
}
