// Command analyze runs the analysis pipeline (spec.md §2) over a small
// built-in example program and reports the resulting task graph through a
// LoggingChannel. The parser and desugarer are out of scope for this repo
// (spec.md §1): a real host embeds the analyzer package directly and feeds
// it an already-parsed Program, this binary exists to exercise the pipeline
// end to end the way the teacher's main.go exercises the MySQL server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/boardscript/analyzer/analyzer"
	"github.com/boardscript/analyzer/config"
	"github.com/boardscript/analyzer/frontend"
	"github.com/boardscript/analyzer/logging"
)

func namePath(names ...string) analyzer.NamePath {
	path := make(analyzer.NamePath, len(names))
	for i, n := range names {
		path[i] = analyzer.IndirectionName{Name: n}
	}
	return path
}

// buildExampleProgram wires a Fetch -> Load -> CreateAs -> Viz pipeline: a
// remote parquet file loaded into a table, transformed, and visualized.
func buildExampleProgram() *analyzer.Program {
	nodes := []analyzer.FlatNode{
		{Type: analyzer.NodeTypeNone, Parent: 0}, // fetch root
		{Type: analyzer.NodeTypeNone, Parent: 1}, // load root
		{Type: analyzer.NodeTypeNone, Parent: 2}, // create root
		{Type: analyzer.NodeTypeObjectSQLTableRef, Parent: 2},
		{Type: analyzer.NodeTypeNone, Parent: 4}, // viz root
		{Type: analyzer.NodeTypeObjectSQLTableRef, Parent: 4},
	}
	typed := make([]analyzer.ASTNode, len(nodes))
	typed[3] = analyzer.TableRefNode{Ref: analyzer.TableRefRelation{Name: namePath("orders")}}
	typed[5] = analyzer.TableRefNode{Ref: analyzer.TableRefRelation{Name: namePath("orders_by_day")}}

	return &analyzer.Program{
		FlatNodes:  nodes,
		TypedNodes: typed,
		Statements: []analyzer.Statement{
			&analyzer.FetchStatement{Root: 0, Name: namePath("raw_orders"), FromURI: "https://example.org/orders.parquet"},
			&analyzer.LoadStatement{Root: 1, Name: namePath("orders"), Source: namePath("raw_orders"), Method: "PARQUET"},
			&analyzer.CreateAsStatement{
				Root:  2,
				Name:  namePath("orders_by_day"),
				Query: &analyzer.SelectStatement{Text: "select day, count(*) from orders group by day"},
			},
			&analyzer.VizStatement{
				Root:          4,
				Target:        analyzer.TableRefRelation{Name: namePath("orders_by_day")},
				ComponentType: "TABLE",
			},
		},
	}
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "configPath", "", "path to an analysis.ini config file")
	var sessionID string
	flag.StringVar(&sessionID, "session", "demo", "session id reported to the update channel")
	flag.Parse()

	settings, err := config.NewAnalysisSettings().Load(&config.CommandLineArgs{ConfigPath: configPath})
	if err != nil {
		panic("failed to load analysis config: " + err.Error())
	}

	if err := logging.InitLogger(logging.LogConfig{LogLevel: "info"}); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	logging.Info("analyzer starting")

	session := frontend.NewSessionWithConfig(sessionID, config.NewFrontendChannelConfig())
	channel := frontend.LoggingChannel{}

	program := buildExampleProgram()
	inst, err := analyzer.AnalyzeProgram(settings, program, nil)
	if err != nil {
		logging.Errorf("analysis failed: %s", err.Error())
		session.Flush(channel)
		return
	}
	session.UpdateProgramAnalysis(inst)

	graph := analyzer.PlanTasks(inst, nil, nil)
	graphJSON, err := json.Marshal(graph)
	if err != nil {
		logging.Errorf("failed to marshal task graph: %s", err.Error())
	}
	session.UpdateTaskGraph(graphJSON)
	for i, task := range graph.ProgramTasks {
		session.UpdateTaskStatus(i, task.StatusCode, "")
		if sql, ok := task.Data.(analyzer.SQLTaskData); ok {
			fmt.Println(sql.Script)
		}
	}

	session.Flush(channel)
	logging.Info("analyzer finished")
}
