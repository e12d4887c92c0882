// Command controller is a minimal demo wiring of the LFC, CIA, and
// incremental engine against a handful of fake southbound tables, in
// the spirit of the teacher's example/hello and example/loopback demo
// binaries: just enough plumbing to exercise the real packages end to
// end from a command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ovsrobot/ovn-sub001/conjids"
	"github.com/ovsrobot/ovn-sub001/ctlcmd"
	"github.com/ovsrobot/ovn-sub001/dbnode"
	"github.com/ovsrobot/ovn-sub001/incengine"
	"github.com/ovsrobot/ovn-sub001/lflowcache"
	"github.com/ovsrobot/ovn-sub001/ovnconfig"
	"github.com/ovsrobot/ovn-sub001/ovnlog"
)

var log2 = ovnlog.For("controller")

func main() {
	runs := flag.Int("runs", 3, "number of simulated engine iterations")
	flag.Parse()

	cfg, err := ovnconfig.FromEnv("OVN_LFC")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	cache := lflowcache.Create()
	cfg.Apply(cache)

	ids := conjids.New()

	portBinding := dbnode.NewFakeTable("port_binding")
	pbNode := dbnode.NewTableNode(portBinding, dbnode.Index{Name: "port_binding_by_name"})

	macBinding := dbnode.NewFakeTable("mac_binding")
	mbNode := dbnode.NewTableNode(macBinding)

	root := &flowCompiler{cache: cache, ids: ids, portBinding: pbNode, macBinding: mbNode}
	root.edges = []incengine.Edge{{Input: pbNode}, {Input: mbNode}}

	ctl := ctlcmd.NewTable()
	engine, err := incengine.Init(root, ctl)
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}

	for i := 0; i < *runs; i++ {
		if i == 1 {
			portBinding.MarkChanged()
		}
		engine.InitRun()
		engine.Run(true)
		fmt.Printf("run %d: root state=%v\n", i, engine.State(root))
	}

	out, _ := ctl.Dispatch("inc-engine/show-stats", nil)
	fmt.Println(out)
}

// flowCompiler stands in for the real ovn-controller lflow compiler: a
// terminal node over the port/mac binding tables that holds the LFC and
// the conjunction-ID allocator. Its Run compiles nothing and admits
// nothing into the cache; it only reports Updated.
type flowCompiler struct {
	incengine.BaseNode

	cache       *lflowcache.Cache
	ids         *conjids.Allocator
	portBinding *dbnode.TableNode
	macBinding  *dbnode.TableNode
	edges       []incengine.Edge
}

func (f *flowCompiler) Name() string { return "flow_compiler" }

func (f *flowCompiler) InputEdges() []incengine.Edge { return f.edges }

func (f *flowCompiler) Run(ctx *incengine.RunContext) incengine.State {
	start := time.Now()
	defer func() { log2.WithField("elapsed", time.Since(start)).Debug("flow_compiler run") }()
	return incengine.Updated
}
