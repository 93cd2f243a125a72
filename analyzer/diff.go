package analyzer

import (
	"encoding/binary"
	"sort"

	"github.com/boardscript/analyzer/hashutil"
)

// DiffOpCode tags a structural diff operation (spec.md §4.3).
type DiffOpCode int

const (
	DiffDelete DiffOpCode = iota
	DiffInsert
	DiffKeep
	DiffMove
	DiffUpdate
)

func (c DiffOpCode) String() string {
	switch c {
	case DiffDelete:
		return "Delete"
	case DiffInsert:
		return "Insert"
	case DiffKeep:
		return "Keep"
	case DiffMove:
		return "Move"
	case DiffUpdate:
		return "Update"
	default:
		return "Unknown"
	}
}

// DiffOp pairs a source statement id with a target statement id under one
// of the five op-codes; either side is nil for Insert/Delete.
type DiffOp struct {
	OpCode DiffOpCode
	Source *int
	Target *int
}

func intRef(v int) *int { return &v }

// defaultUpdateSimilarityThreshold mirrors program_diff.rs's
// UPDATE_SIMILARITY_THRESHOLD; AnalysisSettings.UpdateSimilarityThreshold
// overrides it when configured.
const defaultUpdateSimilarityThreshold = 0.75

func updateSimilarityThreshold(settings *AnalysisSettingsLike) float64 {
	if settings != nil && settings.Threshold > 0 {
		return settings.Threshold
	}
	return defaultUpdateSimilarityThreshold
}

// AnalysisSettingsLike is the narrow view diff.go needs of the analysis
// configuration, decoupled from the config package's concrete struct so
// this file can be exercised with either program instance's settings.
type AnalysisSettingsLike struct{ Threshold float64 }

func settingsView(inst *ProgramInstance) *AnalysisSettingsLike {
	if inst == nil || inst.Settings == nil {
		return nil
	}
	return &AnalysisSettingsLike{Threshold: inst.Settings.UpdateSimilarityThreshold}
}

func nodeText(inst *ProgramInstance, nodeID int32) string {
	loc := inst.Program.FlatNodes[nodeID].Location
	return inst.Program.Source[loc.Offset : loc.Offset+loc.Length]
}

// subtreeSize returns the node count of the subtree rooted at nodeID,
// memoized per instance (spec.md §3.3 cached_subtree_sizes; grounded on
// program_diff.rs's `compute_tree_size`).
func subtreeSize(inst *ProgramInstance, nodeID int32) int {
	if inst.cachedSubtreeSizes == nil {
		inst.cachedSubtreeSizes = make(map[int32]int)
	}
	if size, ok := inst.cachedSubtreeSizes[nodeID]; ok {
		return size
	}
	node := inst.Program.FlatNodes[nodeID]
	total := 1
	if node.Type == NodeTypeArray || node.Type.IsObject() {
		begin := node.ChildrenBeginOrValue
		for i := begin; i < begin+node.ChildrenCount; i++ {
			total += subtreeSize(inst, i)
		}
	}
	inst.cachedSubtreeSizes[nodeID] = total
	return total
}

// subtreeHash returns a structural digest of the subtree rooted at nodeID,
// memoized per instance (spec.md §3.3 subtree-hash caching; spec.md §2's
// "uses subtree hashing for fast equality"). It is an enrichment on top of
// program_diff.rs's algorithm: checkDeepEquality and computeSimilarity take
// a hash match as equality without walking the subtrees, while a hash
// mismatch falls through to their full node-by-node walk.
func subtreeHash(inst *ProgramInstance, nodeID int32) uint64 {
	if inst.cachedSubtreeHashes == nil {
		inst.cachedSubtreeHashes = make(map[int32]uint64)
	}
	if h, ok := inst.cachedSubtreeHashes[nodeID]; ok {
		return h
	}
	var buf []byte
	buf = appendHashBytes(inst, nodeID, buf)
	h := hashutil.HashCode(buf)
	inst.cachedSubtreeHashes[nodeID] = h
	return h
}

func appendHashBytes(inst *ProgramInstance, nodeID int32, buf []byte) []byte {
	node := inst.Program.FlatNodes[nodeID]
	var head [4]byte
	binary.LittleEndian.PutUint16(head[0:2], uint16(node.Type))
	binary.LittleEndian.PutUint16(head[2:4], 0)
	buf = append(buf, head[:]...)

	switch {
	case node.Type == NodeTypeStringRef:
		buf = append(buf, nodeText(inst, nodeID)...)
	case node.Type == NodeTypeBool || node.Type == NodeTypeUInt32 || node.Type == NodeTypeUInt32Bitmap:
		var v [4]byte
		binary.LittleEndian.PutUint32(v[:], uint32(node.ChildrenBeginOrValue))
		buf = append(buf, v[:]...)
	}

	if node.Type == NodeTypeArray || node.Type.IsObject() {
		begin := node.ChildrenBeginOrValue
		for i := begin; i < begin+node.ChildrenCount; i++ {
			if node.Type.IsObject() {
				var k [4]byte
				binary.LittleEndian.PutUint32(k[:], uint32(inst.Program.FlatNodes[i].AttributeKey))
				buf = append(buf, k[:]...)
			}
			buf = appendHashBytes(inst, i, buf)
		}
	}
	return buf
}

type similarityEstimate int

const (
	simNotEqual similarityEstimate = iota
	simSimilar
	simEqual
)

// estimateSimilarity is a cheap triage between two statement roots,
// grounded on program_diff.rs's `estimate_similarity`: different root node
// types are never equal; equal child-count, location length and verbatim
// source text short-circuit to Equal; everything else is Similar
// (pending a full structural comparison).
func estimateSimilarity(source *ProgramInstance, sourceRoot int32, target *ProgramInstance, targetRoot int32) similarityEstimate {
	s := source.Program.FlatNodes[sourceRoot]
	t := target.Program.FlatNodes[targetRoot]
	if s.Type != t.Type {
		return simNotEqual
	}
	if s.ChildrenCount == t.ChildrenCount && s.Location.Length == t.Location.Length {
		if nodeText(source, sourceRoot) == nodeText(target, targetRoot) {
			return simEqual
		}
	}
	return simSimilar
}

// statementSimilarity is the matching-node count over the larger of the
// two subtree sizes (program_diff.rs's `StatementSimilarity`).
type statementSimilarity struct {
	TotalNodes, MatchingNodes int
}

func (s statementSimilarity) score() float64 {
	if s.TotalNodes == 0 {
		return 0
	}
	return float64(s.MatchingNodes) / float64(s.TotalNodes)
}

// countMatchingNodes performs the lock-step DFS program_diff.rs's
// `compute_similarity` runs, returning the number of matching nodes at and
// below (sourceNode, targetNode). Object-kind nodes do a sorted merge over
// attribute keys: keys present on only one side advance that side alone
// and flip the object's own match to false, but matched key pairs still
// recurse and contribute their own matches — mismatched attribute sets do
// NOT zero out the whole subtree's contribution.
func countMatchingNodes(source *ProgramInstance, sourceNode int32, target *ProgramInstance, targetNode int32) int {
	sn := source.Program.FlatNodes[sourceNode]
	tn := target.Program.FlatNodes[targetNode]
	if sn.Type != tn.Type {
		return 0
	}

	matched := 0
	isMatch := false
	switch {
	case sn.Type == NodeTypeNone || sn.Type == NodeTypeNull:
		isMatch = true
	case sn.Type == NodeTypeBool || sn.Type == NodeTypeUInt32 || sn.Type == NodeTypeUInt32Bitmap:
		isMatch = sn.ChildrenBeginOrValue == tn.ChildrenBeginOrValue
	case sn.Type == NodeTypeStringRef:
		isMatch = nodeText(source, sourceNode) == nodeText(target, targetNode)
	case sn.Type == NodeTypeArray:
		sb, tb := sn.ChildrenBeginOrValue, tn.ChildrenBeginOrValue
		sc, tc := sn.ChildrenCount, tn.ChildrenCount
		c := sc
		if tc < c {
			c = tc
		}
		for i := int32(0); i < c; i++ {
			matched += countMatchingNodes(source, sb+i, target, tb+i)
		}
		isMatch = sc == tc
	case sn.Type.IsObject():
		isMatch = sn.ChildrenCount == tn.ChildrenCount
		si, ti := sn.ChildrenBeginOrValue, tn.ChildrenBeginOrValue
		se, te := si+sn.ChildrenCount, ti+tn.ChildrenCount
		for si < se && ti < te {
			sk := source.Program.FlatNodes[si].AttributeKey
			tk := target.Program.FlatNodes[ti].AttributeKey
			switch {
			case sk < tk:
				si++
				isMatch = false
			case sk > tk:
				ti++
				isMatch = false
			default:
				matched += countMatchingNodes(source, si, target, ti)
				si++
				ti++
			}
		}
	default:
		isMatch = false
	}

	if isMatch {
		matched++
	}
	return matched
}

// computeSimilarity scores two statement roots, short-circuited by a
// subtree-hash match: identical hashes mean the subtrees are confirmed
// deep-equal without walking them (spec.md §2's subtree-hashing
// enrichment), so scoring skips straight to a perfect match.
func computeSimilarity(source *ProgramInstance, sourceRoot int32, target *ProgramInstance, targetRoot int32) statementSimilarity {
	sourceSize := subtreeSize(source, sourceRoot)
	targetSize := subtreeSize(target, targetRoot)
	nodeCount := sourceSize
	if targetSize > nodeCount {
		nodeCount = targetSize
	}
	if nodeCount == 0 {
		return statementSimilarity{}
	}
	if subtreeHash(source, sourceRoot) == subtreeHash(target, targetRoot) {
		return statementSimilarity{TotalNodes: nodeCount, MatchingNodes: nodeCount}
	}
	matching := countMatchingNodes(source, sourceRoot, target, targetRoot)
	return statementSimilarity{TotalNodes: nodeCount, MatchingNodes: matching}
}

// checkDeepEquality performs the exhaustive structural comparison
// program_diff.rs's `check_deep_equality` runs: any node-type, child-count
// or attribute-key mismatch fails the whole comparison immediately.
func checkDeepEquality(source *ProgramInstance, sourceNode int32, target *ProgramInstance, targetNode int32) bool {
	if subtreeHash(source, sourceNode) == subtreeHash(target, targetNode) {
		return true
	}
	sn := source.Program.FlatNodes[sourceNode]
	tn := target.Program.FlatNodes[targetNode]
	if sn.Type != tn.Type {
		return false
	}
	switch {
	case sn.Type == NodeTypeNone || sn.Type == NodeTypeNull:
		return true
	case sn.Type == NodeTypeBool || sn.Type == NodeTypeUInt32 || sn.Type == NodeTypeUInt32Bitmap:
		return sn.ChildrenBeginOrValue == tn.ChildrenBeginOrValue
	case sn.Type == NodeTypeStringRef:
		return nodeText(source, sourceNode) == nodeText(target, targetNode)
	case sn.Type == NodeTypeArray:
		if sn.ChildrenCount != tn.ChildrenCount {
			return false
		}
		for i := int32(0); i < sn.ChildrenCount; i++ {
			if !checkDeepEquality(source, sn.ChildrenBeginOrValue+i, target, tn.ChildrenBeginOrValue+i) {
				return false
			}
		}
		return true
	case sn.Type.IsObject():
		if sn.ChildrenCount != tn.ChildrenCount {
			return false
		}
		si, ti := sn.ChildrenBeginOrValue, tn.ChildrenBeginOrValue
		se := si + sn.ChildrenCount
		for si < se {
			sk := source.Program.FlatNodes[si].AttributeKey
			tk := target.Program.FlatNodes[ti].AttributeKey
			if sk != tk {
				return false
			}
			if !checkDeepEquality(source, si, target, ti) {
				return false
			}
			si++
			ti++
		}
		return true
	default:
		return true
	}
}

// mapStatements finds every (source, target) statement pair that is Equal
// or Similar-and-deep-equal (equalPairs, emitted in source-then-target
// ascending order), plus the subset of those pairs that is unambiguous in
// both directions (uniquePairs, sorted), grounded on program_diff.rs's
// `map_statements`.
func mapStatements(source, target *ProgramInstance) (uniquePairs, equalPairs []StatementPair) {
	numSource := len(source.Program.Statements)
	numTarget := len(target.Program.Statements)

	sourceAmbiguous := make([]bool, numSource)
	targetAmbiguous := make([]bool, numTarget)
	targetMapping := make([]int, numTarget)
	for i := range targetMapping {
		targetMapping[i] = -1
	}

	for sourceID := 0; sourceID < numSource; sourceID++ {
		previousMatch := -1
		sourceRoot := source.Program.Statements[sourceID].RootNode()
		for targetID := 0; targetID < numTarget; targetID++ {
			targetRoot := target.Program.Statements[targetID].RootNode()
			switch estimateSimilarity(source, sourceRoot, target, targetRoot) {
			case simNotEqual:
				continue
			case simSimilar:
				if !checkDeepEquality(source, sourceRoot, target, targetRoot) {
					continue
				}
			case simEqual:
			}

			equalPairs = append(equalPairs, StatementPair{Source: sourceID, Target: targetID})

			if existing := targetMapping[targetID]; existing != -1 {
				sourceAmbiguous[sourceID] = true
				sourceAmbiguous[existing] = true
				targetAmbiguous[targetID] = true
				continue
			} else if previousMatch != -1 {
				sourceAmbiguous[sourceID] = true
				targetAmbiguous[previousMatch] = true
				targetAmbiguous[targetID] = true
				continue
			}
			targetMapping[targetID] = sourceID
			previousMatch = targetID
		}
	}

	for targetID := 0; targetID < numTarget; targetID++ {
		sourceID := targetMapping[targetID]
		if sourceID != -1 && !sourceAmbiguous[sourceID] && !targetAmbiguous[targetID] {
			uniquePairs = append(uniquePairs, StatementPair{Source: sourceID, Target: targetID})
		}
	}
	sort.Slice(uniquePairs, func(i, j int) bool {
		if uniquePairs[i].Source != uniquePairs[j].Source {
			return uniquePairs[i].Source < uniquePairs[j].Source
		}
		return uniquePairs[i].Target < uniquePairs[j].Target
	})
	return uniquePairs, equalPairs
}

type lcsEntry struct {
	Source, Target, PrevPileSize int
}

// findLCS recovers the longest strictly-increasing-by-target subsequence
// of uniquePairs (which is already sorted by source) via patience sort,
// grounded on program_diff.rs's `find_lcs`.
func findLCS(uniquePairs []StatementPair) []StatementPair {
	var piles [][]lcsEntry

	for _, pair := range uniquePairs {
		pileID := -1
		for i, pile := range piles {
			if pile[len(pile)-1].Target >= pair.Target {
				pileID = i
				break
			}
		}
		if pileID >= 0 {
			prevPileID := pileID
			if prevPileID < 1 {
				prevPileID = 1
			}
			prevPileID--
			prevPileSize := len(piles[prevPileID])
			piles[pileID] = append(piles[pileID], lcsEntry{Source: pair.Source, Target: pair.Target, PrevPileSize: prevPileSize})
		} else {
			piles = append(piles, nil)
			n := len(piles)
			if n < 2 {
				n = 2
			}
			prevPileID := n - 2
			prevPileSize := len(piles[prevPileID])
			last := len(piles) - 1
			piles[last] = append(piles[last], lcsEntry{Source: pair.Source, Target: pair.Target, PrevPileSize: prevPileSize})
		}
	}

	if len(piles) == 0 {
		return nil
	}

	lcs := make([]StatementPair, 0, len(piles))
	entryID := len(piles[len(piles)-1]) - 1
	for pileID := len(piles) - 1; pileID >= 0; pileID-- {
		entry := piles[pileID][entryID]
		lcs = append(lcs, StatementPair{Source: entry.Source, Target: entry.Target})
		if pileID == 0 {
			break
		}
		entryID = entry.PrevPileSize - 1
	}
	for i, j := 0, len(lcs)-1; i < j; i, j = i+1, j-1 {
		lcs[i], lcs[j] = lcs[j], lcs[i]
	}
	return lcs
}

// equalTargetsFor scans the source-sorted equalPairs list for the first
// unconsumed target paired with sourceID, mirroring program_diff.rs's
// `partition_point`-bounded scan over the sorted equal_pairs slice (a
// linear scan here since equalPairs is already emitted in source order).
func equalTargetsFor(equalPairs []StatementPair, sourceID int, targetEmitted []bool) (int, bool) {
	for _, pair := range equalPairs {
		if pair.Source != sourceID {
			continue
		}
		if targetEmitted[pair.Target] {
			continue
		}
		return pair.Target, true
	}
	return 0, false
}

// computeDiff pairs two programs' statement lists (spec.md §4.3), grounded
// on program_diff.rs's `compute_diff`.
func computeDiff(source, target *ProgramInstance) []DiffOp {
	numSource := len(source.Program.Statements)
	numTarget := len(target.Program.Statements)
	sourceEmitted := make([]bool, numSource)
	targetEmitted := make([]bool, numTarget)

	uniquePairs, equalPairs := mapStatements(source, target)
	lcs := findLCS(uniquePairs)
	threshold := updateSimilarityThreshold(settingsView(source))

	var ops []DiffOp
	prevSource, prevTarget := 0, 0
	for nextLCS := 0; nextLCS <= len(lcs); nextLCS++ {
		var nextSource, nextTarget int
		sentinel := nextLCS == len(lcs)
		if !sentinel {
			nextSource, nextTarget = lcs[nextLCS].Source, lcs[nextLCS].Target
		} else {
			nextSource, nextTarget = numSource, numTarget
		}

		if !sentinel {
			ops = append(ops, DiffOp{OpCode: DiffKeep, Source: intRef(nextSource), Target: intRef(nextTarget)})
			sourceEmitted[nextSource] = true
			targetEmitted[nextTarget] = true
		}

		for sourceID := prevSource; sourceID < nextSource; sourceID++ {
			if sourceEmitted[sourceID] {
				continue
			}
			if targetID, ok := equalTargetsFor(equalPairs, sourceID, targetEmitted); ok {
				ops = append(ops, DiffOp{OpCode: DiffMove, Source: intRef(sourceID), Target: intRef(targetID)})
				sourceEmitted[sourceID] = true
				targetEmitted[targetID] = true
				continue
			}

			sourceRoot := source.Program.Statements[sourceID].RootNode()
			bestTarget := -1
			var bestScore float64
			keptEqual := false
			for targetID := prevTarget; targetID < nextTarget && !keptEqual; targetID++ {
				if targetEmitted[targetID] {
					continue
				}
				targetRoot := target.Program.Statements[targetID].RootNode()
				switch estimateSimilarity(source, sourceRoot, target, targetRoot) {
				case simNotEqual:
					continue
				case simEqual:
					ops = append(ops, DiffOp{OpCode: DiffKeep, Source: intRef(sourceID), Target: intRef(targetID)})
					targetEmitted[targetID] = true
					sourceEmitted[sourceID] = true
					keptEqual = true
				case simSimilar:
					score := computeSimilarity(source, sourceRoot, target, targetRoot).score()
					if score >= threshold && score > bestScore {
						bestScore = score
						bestTarget = targetID
					}
				}
			}
			if keptEqual {
				continue
			}

			if bestTarget >= 0 {
				targetEmitted[bestTarget] = true
				ops = append(ops, DiffOp{OpCode: DiffUpdate, Source: intRef(sourceID), Target: intRef(bestTarget)})
			} else {
				ops = append(ops, DiffOp{OpCode: DiffDelete, Source: intRef(sourceID), Target: nil})
			}
		}

		for targetID := prevTarget; targetID < nextTarget; targetID++ {
			if targetEmitted[targetID] {
				continue
			}
			ops = append(ops, DiffOp{OpCode: DiffInsert, Source: nil, Target: intRef(targetID)})
		}

		prevSource, prevTarget = nextSource, nextTarget
	}

	sort.SliceStable(ops, func(i, j int) bool {
		si, sj := ops[i].Source, ops[j].Source
		switch {
		case si == nil && sj == nil:
			return false
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si < *sj
		}
	})
	return ops
}
