package analyzer

// NormalizeName applies the three-rule name-normalization algorithm
// (spec.md §4.1 step 1, grounded on name_resolution.rs's
// `normalize_name`):
//   - 0 leading Name atoms: the path is returned unchanged (no default
//     schema can be inferred from a purely non-Name path).
//   - exactly 1 leading Name atom: the path is rewritten to
//     `defaultSchema.<atom>`, dropping any trailing non-Name atoms.
//   - 2+ leading Name atoms: the path is returned unchanged.
func NormalizeName(defaultSchema string, path NamePath) NamePath {
	leading := path.leadingNames(2)
	switch len(leading) {
	case 1:
		return NamePath{IndirectionName{Name: defaultSchema}, IndirectionName{Name: leading[0]}}
	default:
		return path
	}
}

// NormalizeStatementNames runs name-resolution Pass 1 (spec.md §4.1): every
// definition-bearing statement's declared name is normalized and recorded
// in statement_names and statement_by_name. The first statement to claim a
// normalized name wins; later claimants are left unresolved in
// statement_by_name (spec.md §4.1's "first definition wins" rule; later
// redefinitions are a liveness/diff concern, not a resolver error).
func NormalizeStatementNames(inst *ProgramInstance) {
	schema := inst.defaultSchema()
	for id, stmt := range inst.Program.Statements {
		name, ok := declaredName(stmt)
		if !ok {
			continue
		}
		normalized := NormalizeName(schema, name)
		inst.StatementNames[id] = normalized
		key := normalized.Key()
		if _, exists := inst.StatementByName[key]; !exists {
			inst.StatementByName[key] = id
		}
	}
}

// resolveStatementID walks a flat node's Parent chain up to its statement
// root and returns the owning statement id, grounded on
// name_resolution.rs's node-to-statement lookup via statement_by_root.
func resolveStatementID(inst *ProgramInstance, nodeID int32) (int, bool) {
	nodes := inst.Program.FlatNodes
	for {
		if int(nodeID) < 0 || int(nodeID) >= len(nodes) {
			return 0, false
		}
		node := nodes[nodeID]
		if node.IsRoot(nodeID) {
			id, ok := inst.StatementByRoot[nodeID]
			return id, ok
		}
		nodeID = node.Parent
	}
}

// addDependency records a depends_on/required_for edge pair between two
// statements, skipping self-edges (spec.md §4.1: a statement never depends
// on itself). A second reference to the same (fromStmt, toStmt) pair does
// not overwrite the first: only the first recorded edge survives (spec.md
// §9/§4.1's first-write-wins rule, symmetric with NormalizeStatementNames's
// statement_by_name guard above).
func addDependency(inst *ProgramInstance, fromStmt, toStmt int, edge DependencyEdge) {
	if fromStmt == toStmt {
		return
	}
	dependsOn := StatementPair{Source: fromStmt, Target: toStmt}
	if _, exists := inst.StatementDependsOn[dependsOn]; !exists {
		inst.StatementDependsOn[dependsOn] = edge
	}
	requiredFor := StatementPair{Source: toStmt, Target: fromStmt}
	if _, exists := inst.StatementRequiredFor[requiredFor]; !exists {
		inst.StatementRequiredFor[requiredFor] = edge
	}
}

// DiscoverStatementDependencies runs name-resolution Pass 2 (spec.md §4.1):
// a Load-source sentinel edge per Load statement, plus a linear sweep over
// every flat node matching OBJECT_SQL_COLUMN_REF/OBJECT_SQL_TABLEREF,
// resolving the referenced name against statement_by_name and recording the
// dependency in both directions.
func DiscoverStatementDependencies(inst *ProgramInstance) {
	schema := inst.defaultSchema()

	for id, stmt := range inst.Program.Statements {
		load, ok := stmt.(*LoadStatement)
		if !ok {
			continue
		}
		sourceKey := NormalizeName(schema, load.Source).Key()
		if sourceID, ok := inst.StatementByName[sourceKey]; ok {
			addDependency(inst, id, sourceID, DependencyEdge{Kind: DependencyTableRef, EdgeNodeID: NoEdgeNode})
		}
	}

	for nodeID, node := range inst.Program.FlatNodes {
		switch node.Type {
		case NodeTypeObjectSQLColumnRef:
			typed, ok := inst.Program.TypedNodes[nodeID].(ColumnRefNode)
			if !ok {
				continue
			}
			resolveReferencedName(inst, schema, int32(nodeID), typed.Name, DependencyColumnRef)
		case NodeTypeObjectSQLTableRef:
			typed, ok := inst.Program.TypedNodes[nodeID].(TableRefNode)
			if !ok {
				continue
			}
			rel, ok := typed.Ref.(TableRefRelation)
			if !ok {
				// Other table-ref variants are ignored by the dependency
				// pass (spec.md §3.2).
				continue
			}
			resolveReferencedName(inst, schema, int32(nodeID), rel.Name, DependencyTableRef)
		}
	}
}

// resolveReferencedName normalizes a referenced name and, if it resolves to
// a known statement, records the dependency edge from the referencing
// node's owning statement to the referenced statement.
func resolveReferencedName(inst *ProgramInstance, schema string, nodeID int32, name NamePath, kind DependencyKind) {
	fromStmt, ok := resolveStatementID(inst, nodeID)
	if !ok {
		return
	}
	key := NormalizeName(schema, name).Key()
	toStmt, ok := inst.StatementByName[key]
	if !ok {
		return
	}
	addDependency(inst, fromStmt, toStmt, DependencyEdge{Kind: kind, EdgeNodeID: nodeID})
}
