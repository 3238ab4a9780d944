package seed

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
	"Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
	"Edward", "Deborah",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter",
}

var nicknames = []string{
	"Ace", "Bear", "Champ", "Duke", "Flash", "Jazz", "Kit", "Maverick", "Ninja", "Oz",
	"Pip", "Rocky", "Scout", "Tex", "Viper", "Wolf", "Ziggy", "Buzz", "Dash", "Echo",
	"Finn", "Gizmo", "Hawk", "Indy", "Jax", "Koda", "Lucky", "Mojo", "Nova", "Otis",
	"Pax", "Quinn", "Rex", "Sky", "Taz", "Uno", "Vega", "Wren", "Yogi", "Zane",
	"Blue", "Coco", "Daisy", "Frost", "Goldie", "Honey", "Ivy", "Juno", "Luna", "Misty",
}
