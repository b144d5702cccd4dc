package topics

var defaultUniverse = MustUniverse(catalog()...)

// Default returns the process-wide catalog used by the game. It is built once
// at package initialisation and shared by every caller.
func Default() *Universe { return defaultUniverse }

func catalog() []Topic {
	domain := []string{
		"Abordagens curriculares envolvendo etnicidade, gênero, direitos humanos e inclusão",
		"Analíticas de aprendizagem (learning analytics) em computação",
		"Aspectos demográficos, sociais e econômicos de cursos de computação",
		"Aspectos raciais/étnicos na educação em computação",
		"Aspectos éticos na educação em computação",
		"Avaliação automatizada de tarefas de programação",
		"Avaliação da aprendizagem em computação",
		"Avaliação de pensamento computacional",
		"Computação desplugada",
		"Computação na educação infantil",
		"Computação na educação profissional",
		"Computação no ensino fundamental",
		"Computação no ensino médio",
		"Comunidades discentes em cursos de computação",
		"Concepções e organizações curriculares em computação",
		"Curricularização da pesquisa e da extensão em computação",
		"Didática de computação",
		"Diversidade em cursos de computação",
		"Educação continuada em computação",
		"Educação corporativa em computação",
		"Educação de jovens e adultos em computação",
		"Educação em computação aberta e livre (e.g. REA, MOOC)",
		"Educação em computação através do uso de imagens, áudio e vídeo",
		"Educação em computação em espaços não-formais",
		"Ensino e/ou aprendizagem de computação",
		"Estratégias de ensino e/ou aprendizagem de computação",
		"Estudos de gênero na educação em computação",
		"Estudos secundários: revisões sistemáticas e mapeamentos sistemáticos",
		"Estágio supervisionado na formação de professores de computação",
		"Evasão e retenção em cursos e disciplinas de computação",
		"Fatores psicológicos e emocionais em educação em computação",
		"Feedback de tarefas de programação",
		"Formação científica em cursos de computação",
		"Formação continuada de professores em computação",
		"Formação inicial de professores em computação",
		"Formação na pós-graduação em computação",
		"Habilidades técnicas (hard skills) e não-técnicas (soft skills) em computação",
		"Hardware na educação em computação",
		"Implantação e avaliação continuada de currículos, programas e cursos de computação",
		"Inclusão e acessibilidade na educação em computação",
		"Integração dos conteúdos exigidos por legislação em currículos de computação",
		"Inteligência artificial e aprendizado de máquina na educação em computação",
		"Interação entre academia e indústria de TI",
		"Jogos e gamificação na educação em computação",
		"Linguagens visuais e textuais para aprendizagem de programação",
		"Materiais didáticos de computação",
		"Mentoria na graduação e pós-graduação em computação",
		"Metacognição na educação em computação",
		"Metodologias ativas no ensino e/ou aprendizagem de computação",
		"Mineração de dados educacionais em computação",
		"Modelos de monitoria e apoio discente em disciplinas de graduação",
		"Métodos e estratégias para concepção de currículos, programas e cursos de computação",
		"Pensamento computacional",
		"Programação na educação superior",
		"Prática de ensino de computação na formação de professores",
		"Psicologia da programação",
		"Realidade virtual e aumentada na educação em computação",
		"Recursos de apoio à educação em computação",
		"Redes e mídias sociais em educação em computação",
		"Robótica na educação em computação",
		"Saberes docentes na computação",
		"Teorias educacionais e psicológicas aplicadas à educação em computação",
	}
	other := []string{
		"Marketing Digital",
		"Teoria dos jogos",
		"Sistemas elétricos",
	}

	list := make([]Topic, 0, len(domain)+len(other))
	for _, name := range domain {
		list = append(list, Topic{Name: name, DomainRelevant: true})
	}
	for _, name := range other {
		list = append(list, Topic{Name: name})
	}
	return list
}
