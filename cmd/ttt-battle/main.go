package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/montplusa/tictactoe-evolve/pkg/evolve"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
)

// 指定されたディレクトリ内の同じプレフィックスを持つファイルの最大連番を取得する
func findMaxSequenceNumber(dir, prefix string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	// プレフィックス_NNNNN.json の形式にマッチする正規表現
	pattern := regexp.MustCompile(fmt.Sprintf(`^%s_(\d{5})\.json$`, regexp.QuoteMeta(prefix)))
	maxSeq := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := pattern.FindStringSubmatch(file.Name())
		if len(matches) != 2 {
			continue
		}
		if seq, err := strconv.Atoi(matches[1]); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

// 対戦タスク
type battleTask struct {
	gameIndex int
	seqNum    int
	seed      int64
}

type battleResult struct {
	gameIndex int
	result    game.BattleResult
}

type options struct {
	x, o      *agentConfig
	seeded    bool
	alternate bool
	outputDir string
	prefix    string
	noOutput  bool
}

// playGame は一局を実行する. 奇数局は alternate のとき O が先手
func playGame(task battleTask, opt options) (game.BattleResult, error) {
	rng := rand.New(rand.NewSource(task.seed))
	x, err := opt.x.build(rng)
	if err != nil {
		return game.BattleResult{}, err
	}
	o, err := opt.o.build(rng)
	if err != nil {
		return game.BattleResult{}, err
	}

	var start game.Board
	if opt.seeded {
		start = evolve.SeedBoard(rng)
	}
	first := game.X
	if opt.alternate && task.gameIndex%2 == 1 {
		first = game.O
	}
	return game.NewGameRunner(x, o).Run(start, first)
}

func worker(id int, tasks <-chan battleTask, results chan<- battleResult, opt options, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range tasks {
		result, err := playGame(task, opt)
		if err != nil {
			log.Fatalf("対戦 %d: %v", task.gameIndex, err)
		}

		if !opt.noOutput {
			jsonData, err := json.Marshal(result)
			if err != nil {
				log.Printf("エラー: JSONの変換に失敗しました: %v", err)
			} else {
				filename := filepath.Join(opt.outputDir, fmt.Sprintf("%s_%05d.json", opt.prefix, task.seqNum))
				if err := os.WriteFile(filename, jsonData, 0644); err != nil {
					log.Printf("エラー: ファイルの書き込みに失敗しました: %v", err)
				}
			}
		}

		results <- battleResult{gameIndex: task.gameIndex, result: result}
		log.Printf("対戦 %d が完了しました（ワーカー %d, 勝者 %s）", task.gameIndex, id, result.Winner)
	}
}

func main() {
	xAgent := flag.String("x", "minimax:hard", "X 側のエージェント (minimax:<difficulty>, neural:<weights>, random, trivial)")
	oAgent := flag.String("o", "random", "O 側のエージェント")
	outputDir := flag.String("output", "output", "出力ディレクトリ名")
	outputPrefix := flag.String("output-prefix", "", "出力ファイル名のプレフィックス")
	noOutput := flag.Bool("no-output", false, "出力しない")
	games := flag.Int("games", 1, "実行する試合数")
	numWorkers := flag.Int("workers", runtime.NumCPU(), "ワーカー数")
	seeded := flag.Bool("seeded", false, "学習時と同じランダムな初期盤面から開始する")
	alternate := flag.Bool("alternate", false, "先手を交互にする")
	seed := flag.Int64("seed", 0, "乱数シード (0 は時刻)")
	flag.Parse()

	if !*noOutput && *outputPrefix == "" {
		fmt.Fprintln(os.Stderr, "エラー: --output-prefix は必須です")
		flag.Usage()
		os.Exit(1)
	}

	x, err := parseAgent(*xAgent)
	if err != nil {
		log.Fatalf("-x: %v", err)
	}
	o, err := parseAgent(*oAgent)
	if err != nil {
		log.Fatalf("-o: %v", err)
	}
	opt := options{
		x: x, o: o,
		seeded:    *seeded,
		alternate: *alternate,
		outputDir: *outputDir,
		prefix:    *outputPrefix,
		noOutput:  *noOutput,
	}

	startSeq := 1
	if !*noOutput {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("エラー: 出力ディレクトリの作成に失敗しました: %v", err)
		}
		maxSeq, err := findMaxSequenceNumber(*outputDir, *outputPrefix)
		if err != nil {
			log.Printf("警告: 既存ファイルの確認中にエラーが発生しました: %v", err)
		}
		startSeq = maxSeq + 1
		log.Printf("連番 %05d から開始します", startSeq)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	seeds := rand.New(rand.NewSource(*seed))
	log.Printf("%s 対 %s を %d 回実行します（ワーカー数: %d）", *xAgent, *oAgent, *games, *numWorkers)

	tasks := make(chan battleTask, *games)
	results := make(chan battleResult, *games)

	var wg sync.WaitGroup
	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go worker(i, tasks, results, opt, &wg)
	}

	for i := 0; i < *games; i++ {
		tasks <- battleTask{gameIndex: i, seqNum: startSeq + i, seed: seeds.Int63()}
	}
	close(tasks)

	var tally tally
	for i := 0; i < *games; i++ {
		tally.add((<-results).result)
	}
	wg.Wait()

	log.Println("すべての対戦が完了しました")
	log.Printf("X (%s): %d 勝, O (%s): %d 勝, 引き分け: %d, 反則負け: %d",
		*xAgent, tally.x, *oAgent, tally.o, tally.draws, tally.forfeits)
}

type tally struct {
	x, o, draws, forfeits int
}

func (t *tally) add(r game.BattleResult) {
	switch r.Winner {
	case game.X:
		t.x++
	case game.O:
		t.o++
	default:
		t.draws++
	}
	if r.Forfeit != "" {
		t.forfeits++
	}
}
