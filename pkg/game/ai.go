package game

// AI はゲーム用エージェントのインターフェース
type AI interface {
	// エージェント名
	Name() string
	// me の手番で置くマスを返す
	Move(b Board, me Mark) (int, error)
}
